package task

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskpilot/taskpilot/pkg/cerr"
)

// Validation errors shared by the REST handlers and the command interpreter.
// Each is detected before any repository mutation.
var (
	ErrEmptyTitle      = cerr.NewError(cerr.InvalidArgument, "Task title must not be empty", nil)
	ErrInvalidPriority = cerr.NewError(cerr.InvalidArgument, "Invalid priority. Must be 'low', 'medium', or 'high'", nil)
	ErrInvalidStatus   = cerr.NewError(cerr.InvalidArgument, "Invalid status. Must be 'pending', 'in-progress', or 'completed'", nil)
	ErrInvalidDueDate  = cerr.NewError(cerr.InvalidArgument, "Invalid due date format", nil)
	ErrNoChange        = cerr.NewError(cerr.FailedPrecondition, "No changes were made to the task", nil)
)

// Service implements the task operations on top of a Repository: validation
// before mutation, the completed_at/status invariant, and the default list
// ordering.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type AddParams struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
}

func (s *Service) Add(ctx context.Context, userID string, p AddParams) (*Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	priority := p.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	now := s.now()
	t := &Task{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Title:       title,
		Description: p.Description,
		Status:      StatusPending,
		Priority:    priority,
		DueDate:     p.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Task, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, filter Filter) ([]*Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	tasks, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks, filter)
	return tasks, nil
}

// FindByTitle returns the user's tasks whose title contains the query,
// case-insensitively, most recently created first.
func (s *Service) FindByTitle(ctx context.Context, userID, query string) ([]*Task, error) {
	tasks, err := s.repo.FindByTitle(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

type UpdateParams struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *Status
	DueDate     *time.Time
}

// Update applies the provided fields to the task and reports what changed,
// phrased for the end user ("title to 'shopping'"). Applying parameters that
// leave every field as-is fails with ErrNoChange before any write.
func (s *Service) Update(ctx context.Context, userID, id string, p UpdateParams) (*Task, []string, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	var changes []string
	if p.Title != nil && *p.Title != t.Title {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, nil, ErrEmptyTitle
		}
		t.Title = title
		changes = append(changes, "title to '"+title+"'")
	}
	if p.Description != nil && *p.Description != t.Description {
		t.Description = *p.Description
		changes = append(changes, "description")
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		if !p.Priority.Valid() {
			return nil, nil, ErrInvalidPriority
		}
		t.Priority = *p.Priority
		changes = append(changes, "priority to '"+string(*p.Priority)+"'")
	}
	if p.DueDate != nil && (t.DueDate == nil || !p.DueDate.Equal(*t.DueDate)) {
		t.DueDate = p.DueDate
		changes = append(changes, "due date to '"+p.DueDate.Format("2006-01-02")+"'")
	}
	if p.Status != nil && *p.Status != t.Status {
		if !p.Status.Valid() {
			return nil, nil, ErrInvalidStatus
		}
		t.Status = *p.Status
		if *p.Status == StatusCompleted {
			now := s.now()
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
		changes = append(changes, "status to '"+string(*p.Status)+"'")
	}

	if len(changes) == 0 {
		return nil, nil, ErrNoChange
	}

	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, nil, err
	}
	return t, changes, nil
}

// Complete marks the task completed or resets it to pending, keeping
// CompletedAt in lockstep with the status.
func (s *Service) Complete(ctx context.Context, userID, id string, completed bool) (*Task, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if completed {
		t.Status = StatusCompleted
		now := s.now()
		t.CompletedAt = &now
	} else {
		t.Status = StatusPending
		t.CompletedAt = nil
	}
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the task and returns its last state for confirmation
// messages.
func (s *Service) Delete(ctx context.Context, userID, id string) (*Task, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return t, nil
}

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

func sortTasks(tasks []*Task, filter Filter) {
	desc := filter.Order == "desc"
	less := func(i, j int) bool { return false }

	switch filter.SortBy {
	case "title":
		less = func(i, j int) bool { return tasks[i].Title < tasks[j].Title }
	case "due_date":
		less = func(i, j int) bool {
			switch {
			case tasks[i].DueDate == nil:
				return false
			case tasks[j].DueDate == nil:
				return true
			}
			return tasks[i].DueDate.Before(*tasks[j].DueDate)
		}
	case "priority":
		less = func(i, j int) bool { return priorityRank[tasks[i].Priority] < priorityRank[tasks[j].Priority] }
	case "created_at":
		less = func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) }
	default:
		// Default ordering: status ascending (pending first), then newest
		// created first.
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].Status.rank() != tasks[j].Status.rank() {
				return tasks[i].Status.rank() < tasks[j].Status.rank()
			}
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
		return
	}

	if desc {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	sort.SliceStable(tasks, less)
}
