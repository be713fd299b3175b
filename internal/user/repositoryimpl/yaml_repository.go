package repositoryimpl

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskpilot/taskpilot/internal/user"
	"github.com/taskpilot/taskpilot/pkg/cerr"
	"github.com/taskpilot/taskpilot/pkg/storage"
)

const usersPrefix = "users"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", usersPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, u *user.User) error {
	// Email is the login key, enforce uniqueness across the account set.
	existing, err := r.GetByEmail(ctx, u.Email)
	if err != nil && !cerr.IsCode(err, cerr.NotFound) {
		return err
	}
	if existing != nil {
		return cerr.NewError(cerr.AlreadyExists, "an account with this email already exists", nil)
	}
	data, err := yaml.Marshal(u)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal user: %w", err))
	}
	if err := r.storage.Write(ctx, path(u.ID), data); err != nil {
		return cerr.WrapStorageWriteError("user", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*user.User, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("user", err)
	}
	var u user.User
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal user: %w", err))
	}
	return &u, nil
}

func (r *YAMLRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	paths, err := r.storage.List(ctx, usersPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("users", err)
	}
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var u user.User
		if err := yaml.Unmarshal(data, &u); err != nil {
			continue
		}
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "user not found", nil)
}
