package interpreter

import "github.com/taskpilot/taskpilot/internal/task"

// ErrKind labels why an interpreted command failed. It is a user-facing
// taxonomy, not a transport error code.
type ErrKind string

const (
	ErrNone              ErrKind = ""
	ErrInvalidPriority   ErrKind = "invalid_priority"
	ErrInvalidStatus     ErrKind = "invalid_status"
	ErrInvalidDueDate    ErrKind = "invalid_due_date"
	ErrTaskNotFound      ErrKind = "task_not_found"
	ErrNoChangeRequested ErrKind = "no_change_requested"
	ErrOperationFailed   ErrKind = "operation_failed"
	ErrUnrecognized      ErrKind = "unrecognized"
)

// Command is the structured form of a natural language message: the intent
// plus whatever slots the extractors could fill.
type Command struct {
	Intent     Intent
	RawMessage string

	// Title is the new task title (add) or the resolution query
	// (update, complete, delete).
	Title    string
	Priority task.Priority
	DueDate  string
	NewValue string
	Filter   task.Filter
}

type AddResult struct {
	Task *task.Task `json:"task"`
}

type ListResult struct {
	Tasks []*task.Task `json:"tasks"`
	Count int          `json:"count"`
}

type UpdateResult struct {
	Task    *task.Task `json:"task"`
	Changes []string   `json:"changes"`
}

type CompleteResult struct {
	Task *task.Task `json:"task"`
}

type DeleteResult struct {
	Task *task.Task `json:"task"`
}

type CountResult struct {
	Count int `json:"count"`
}

// Result is the outcome of interpreting and executing one message. Exactly
// one payload field is set on success, matching the intent.
type Result struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Err     ErrKind `json:"error,omitempty"`

	Add      *AddResult      `json:"add,omitempty"`
	List     *ListResult     `json:"list,omitempty"`
	Update   *UpdateResult   `json:"update,omitempty"`
	Complete *CompleteResult `json:"complete,omitempty"`
	Delete   *DeleteResult   `json:"delete,omitempty"`
	Count    *CountResult    `json:"count,omitempty"`
}

func failure(kind ErrKind, message string) Result {
	return Result{Success: false, Message: message, Err: kind}
}
