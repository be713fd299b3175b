package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/pkg/cerr"
	"github.com/taskpilot/taskpilot/pkg/storage"
)

func newTestRepository(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return NewYAMLRepository(store)
}

func testTask(userID, id, title string) *task.Task {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return &task.Task{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Status:    task.StatusPending,
		Priority:  task.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	want := testTask("u1", "t1", "Buy groceries")
	if err := repo.Create(ctx, want); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != want.Title {
		t.Errorf("Get title = %q, want %q", got.Title, want.Title)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("Get created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Create(ctx, testTask("u1", "t1", "a")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, testTask("u1", "t1", "b"))
	if !cerr.IsCode(err, cerr.AlreadyExists) {
		t.Errorf("duplicate Create error = %v, want AlreadyExists", err)
	}
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Get(ctx, "u1", "missing")
	if !cerr.IsCode(err, cerr.NotFound) {
		t.Errorf("Get error = %v, want NotFound", err)
	}
}

func TestListScopedToUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, tsk := range []*task.Task{
		testTask("u1", "t1", "Buy groceries"),
		testTask("u1", "t2", "Write report"),
		testTask("u2", "t3", "Not mine"),
	} {
		if err := repo.Create(ctx, tsk); err != nil {
			t.Fatalf("Create %s failed: %v", tsk.ID, err)
		}
	}

	tasks, err := repo.List(ctx, "u1", task.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("List returned %d tasks, want 2", len(tasks))
	}
	for _, got := range tasks {
		if got.UserID != "u1" {
			t.Errorf("List leaked task of user %q", got.UserID)
		}
	}
}

func TestListFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	done := testTask("u1", "t1", "Done thing")
	done.Status = task.StatusCompleted
	urgent := testTask("u1", "t2", "Urgent thing")
	urgent.Priority = task.PriorityHigh
	for _, tsk := range []*task.Task{done, urgent, testTask("u1", "t3", "Plain thing")} {
		if err := repo.Create(ctx, tsk); err != nil {
			t.Fatalf("Create %s failed: %v", tsk.ID, err)
		}
	}

	pending, err := repo.List(ctx, "u1", task.Filter{Status: task.StatusPending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("status filter returned %d tasks, want 2", len(pending))
	}

	high, err := repo.List(ctx, "u1", task.Filter{Priority: task.PriorityHigh})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(high) != 1 || high[0].ID != "t2" {
		t.Errorf("priority filter returned %v, want just t2", high)
	}
}

func TestFindByTitleCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, tsk := range []*task.Task{
		testTask("u1", "t1", "Buy GROCERIES"),
		testTask("u1", "t2", "Write report"),
		testTask("u2", "t3", "groceries for them"),
	} {
		if err := repo.Create(ctx, tsk); err != nil {
			t.Fatalf("Create %s failed: %v", tsk.ID, err)
		}
	}

	tasks, err := repo.FindByTitle(ctx, "u1", "groceries")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Errorf("FindByTitle returned %v, want just t1", tasks)
	}

	none, err := repo.FindByTitle(ctx, "u1", "dentist")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("FindByTitle returned %v, want none", none)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	tsk := testTask("u1", "t1", "Buy groceries")
	if err := repo.Create(ctx, tsk); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tsk.Title = "Buy apples"
	if err := repo.Update(ctx, tsk); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := repo.Get(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Buy apples" {
		t.Errorf("title after Update = %q, want %q", got.Title, "Buy apples")
	}

	missing := testTask("u1", "nope", "x")
	if err := repo.Update(ctx, missing); !cerr.IsCode(err, cerr.NotFound) {
		t.Errorf("Update of missing task error = %v, want NotFound", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Create(ctx, testTask("u1", "t1", "Buy groceries")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Delete(ctx, "u1", "t1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "u1", "t1"); !cerr.IsCode(err, cerr.NotFound) {
		t.Errorf("Get after Delete error = %v, want NotFound", err)
	}
	if err := repo.Delete(ctx, "u1", "t1"); !cerr.IsCode(err, cerr.NotFound) {
		t.Errorf("second Delete error = %v, want NotFound", err)
	}
}
