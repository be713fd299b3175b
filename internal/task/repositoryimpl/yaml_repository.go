package repositoryimpl

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/pkg/cerr"
	"github.com/taskpilot/taskpilot/pkg/storage"
)

const tasksPrefix = "tasks"

// YAMLRepository persists one YAML document per task under
// tasks/<user_id>/<task_id>.yaml. The per-user prefix keeps every query
// scoped to its owner.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func userPrefix(userID string) string {
	return fmt.Sprintf("%s/%s", tasksPrefix, userID)
}

func path(userID, id string) string {
	return fmt.Sprintf("%s/%s.yaml", userPrefix(userID), id)
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	exists, err := r.storage.Exists(ctx, path(t.UserID, t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "task already exists", nil)
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, path(t.UserID, t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, userID, id string) (*task.Task, error) {
	data, err := r.storage.Read(ctx, path(userID, id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	var t task.Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task: %w", err))
	}
	return &t, nil
}

func (r *YAMLRepository) List(ctx context.Context, userID string, filter task.Filter) ([]*task.Task, error) {
	all, err := r.readAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	var tasks []*task.Task
	for _, t := range all {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *YAMLRepository) FindByTitle(ctx context.Context, userID, query string) ([]*task.Task, error) {
	all, err := r.readAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var tasks []*task.Task
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), q) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	exists, err := r.storage.Exists(ctx, path(t.UserID, t.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, path(t.UserID, t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}

func (r *YAMLRepository) Delete(ctx context.Context, userID, id string) error {
	if err := r.storage.Delete(ctx, path(userID, id)); err != nil {
		return cerr.WrapStorageDeleteError("task", err)
	}
	return nil
}

func (r *YAMLRepository) readAll(ctx context.Context, userID string) ([]*task.Task, error) {
	paths, err := r.storage.List(ctx, userPrefix(userID))
	if err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}
	var tasks []*task.Task
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var t task.Task
		if err := yaml.Unmarshal(data, &t); err != nil {
			continue
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}
