package user

import "time"

// User is an account holder. PasswordHash is a bcrypt hash and never leaves
// the service.
type User struct {
	ID           string    `yaml:"id" json:"id"`
	Email        string    `yaml:"email" json:"email"`
	DisplayName  string    `yaml:"display_name" json:"display_name"`
	PasswordHash string    `yaml:"password_hash" json:"-"`
	CreatedAt    time.Time `yaml:"created_at" json:"created_at"`
}
