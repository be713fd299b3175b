package task

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type stubRepo struct {
	tasks map[string]*Task
}

func newStubRepo() *stubRepo {
	return &stubRepo{tasks: map[string]*Task{}}
}

func (r *stubRepo) Create(_ context.Context, t *Task) error {
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *stubRepo) Get(_ context.Context, userID, id string) (*Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFoundStub
	}
	cp := *t
	return &cp, nil
}

func (r *stubRepo) List(_ context.Context, userID string, filter Filter) ([]*Task, error) {
	var out []*Task
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubRepo) FindByTitle(_ context.Context, userID, query string) ([]*Task, error) {
	q := strings.ToLower(query)
	var out []*Task
	for _, t := range r.tasks {
		if t.UserID == userID && strings.Contains(strings.ToLower(t.Title), q) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubRepo) Update(_ context.Context, t *Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return ErrNotFoundStub
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *stubRepo) Delete(_ context.Context, userID, id string) error {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFoundStub
	}
	delete(r.tasks, id)
	return nil
}

// ErrNotFoundStub stands in for the repository's not-found error in tests.
var ErrNotFoundStub = assert.AnError

func newTestService() (*Service, *stubRepo) {
	repo := newStubRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func (r *stubRepo) seed(userID, id, title string, status Status, createdAt time.Time) *Task {
	t := &Task{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Status:    status,
		Priority:  PriorityMedium,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	r.tasks[id] = t
	return t
}

func TestAddDefaults(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	got, err := svc.Add(ctx, "u1", AddParams{Title: "  Buy groceries  "})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Buy groceries", got.Title)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, PriorityMedium, got.Priority)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, testNow, got.CreatedAt)

	stored, err := repo.Get(ctx, "u1", got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Title, stored.Title)
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	_, err := svc.Add(ctx, "u1", AddParams{Title: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = svc.Add(ctx, "u1", AddParams{Title: "x", Priority: "urgent-ish"})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	assert.Empty(t, repo.tasks)
}

func TestListFilterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.List(ctx, "u1", Filter{Status: "sleeping"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.List(ctx, "u1", Filter{Priority: "purple"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestListDefaultOrdering(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.seed("u1", "t1", "older pending", StatusPending, testNow.Add(-2*time.Hour))
	repo.seed("u1", "t2", "completed", StatusCompleted, testNow.Add(-time.Hour))
	repo.seed("u1", "t3", "newer pending", StatusPending, testNow.Add(-time.Hour))
	repo.seed("u1", "t4", "in progress", StatusInProgress, testNow.Add(-3*time.Hour))

	tasks, err := svc.List(ctx, "u1", Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	var ids []string
	for _, got := range tasks {
		ids = append(ids, got.ID)
	}
	// Pending before in-progress before completed; newest first within a
	// status.
	assert.Equal(t, []string{"t3", "t1", "t4", "t2"}, ids)
}

func TestListSortByTitleDesc(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.seed("u1", "t1", "banana", StatusPending, testNow)
	repo.seed("u1", "t2", "apple", StatusPending, testNow)
	repo.seed("u1", "t3", "cherry", StatusPending, testNow)

	tasks, err := svc.List(ctx, "u1", Filter{SortBy: "title", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "cherry", tasks[0].Title)
	assert.Equal(t, "apple", tasks[2].Title)
}

func TestFindByTitleMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.seed("u1", "t1", "Weekly report", StatusPending, testNow.Add(-3*time.Hour))
	repo.seed("u1", "t2", "Annual report", StatusPending, testNow.Add(-time.Hour))
	repo.seed("u1", "t3", "Monthly report", StatusPending, testNow.Add(-2*time.Hour))

	tasks, err := svc.FindByTitle(ctx, "u1", "REPORT")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "t2", tasks[0].ID)
	assert.Equal(t, "t3", tasks[1].ID)
	assert.Equal(t, "t1", tasks[2].ID)
}

func TestUpdateReportsChanges(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.seed("u1", "t1", "Buy groceries", StatusPending, testNow.Add(-time.Hour))

	title := "Buy apples"
	priority := PriorityHigh
	got, changes, err := svc.Update(ctx, "u1", "t1", UpdateParams{Title: &title, Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, []string{"title to 'Buy apples'", "priority to 'high'"}, changes)
	assert.Equal(t, "Buy apples", got.Title)
	assert.Equal(t, testNow, got.UpdatedAt)
}

func TestUpdateNoChange(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	seeded := repo.seed("u1", "t1", "Buy groceries", StatusPending, testNow.Add(-time.Hour))

	title := "Buy groceries"
	_, _, err := svc.Update(ctx, "u1", "t1", UpdateParams{Title: &title})
	assert.ErrorIs(t, err, ErrNoChange)

	stored, err := repo.Get(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, seeded.UpdatedAt, stored.UpdatedAt)
}

func TestUpdateStatusKeepsCompletedAtInvariant(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.seed("u1", "t1", "Buy groceries", StatusPending, testNow.Add(-time.Hour))

	completed := StatusCompleted
	got, _, err := svc.Update(ctx, "u1", "t1", UpdateParams{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, testNow, *got.CompletedAt)

	pending := StatusPending
	got, _, err = svc.Update(ctx, "u1", "t1", UpdateParams{Status: &pending})
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
}

func TestCompleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.seed("u1", "t1", "Buy groceries", StatusPending, testNow.Add(-time.Hour))

	got, err := svc.Complete(ctx, "u1", "t1", true)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	got, err = svc.Complete(ctx, "u1", "t1", false)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestDeleteReturnsLastState(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.seed("u1", "t1", "Buy groceries", StatusPending, testNow.Add(-time.Hour))

	got, err := svc.Delete(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Buy groceries", got.Title)
	assert.Empty(t, repo.tasks)
}
