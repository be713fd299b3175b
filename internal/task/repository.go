package task

import "context"

// Filter narrows and orders a listing. Zero values mean "no constraint".
type Filter struct {
	Status   Status
	Priority Priority
	// SortBy is one of "title", "due_date", "priority", "created_at".
	// Empty selects the default ordering: status ascending (pending,
	// in-progress, completed), then creation time descending.
	SortBy string
	// Order is "asc" or "desc"; empty means "asc".
	Order string
}

// Repository persists tasks. Every method is scoped to a single user; the
// user ID filter is the authorization boundary and must never be dropped.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, userID, id string) (*Task, error)
	List(ctx context.Context, userID string, filter Filter) ([]*Task, error)
	// FindByTitle returns every task of the user whose title contains the
	// query, case-insensitively, in no particular order.
	FindByTitle(ctx context.Context, userID, query string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, userID, id string) error
}
