package task

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// rank orders statuses for the default listing: pending before in-progress
// before completed.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return 3
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single todo item owned by one user. CompletedAt is non-nil if
// and only if Status is completed.
type Task struct {
	ID          string     `yaml:"id" json:"id"`
	UserID      string     `yaml:"user_id" json:"user_id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Status      Status     `yaml:"status" json:"status"`
	Priority    Priority   `yaml:"priority" json:"priority"`
	DueDate     *time.Time `yaml:"due_date" json:"due_date,omitempty"`
	CompletedAt *time.Time `yaml:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `yaml:"updated_at" json:"updated_at"`
}
