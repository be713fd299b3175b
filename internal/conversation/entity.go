package conversation

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `yaml:"id" json:"id"`
	Role      Role      `yaml:"role" json:"role"`
	Content   string    `yaml:"content" json:"content"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Conversation is one chat thread between a user and the assistant. The
// message history is stored inline with the thread.
type Conversation struct {
	ID        string    `yaml:"id" json:"id"`
	UserID    string    `yaml:"user_id" json:"user_id"`
	Title     string    `yaml:"title" json:"title"`
	Messages  []Message `yaml:"messages" json:"messages"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}
