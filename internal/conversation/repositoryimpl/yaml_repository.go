package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/taskpilot/taskpilot/internal/conversation"
	"github.com/taskpilot/taskpilot/pkg/cerr"
	"github.com/taskpilot/taskpilot/pkg/storage"
)

const conversationsPrefix = "conversations"

// YAMLRepository persists one YAML document per conversation, messages
// inline, under conversations/<user_id>/<conversation_id>.yaml.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func userPrefix(userID string) string {
	return fmt.Sprintf("%s/%s", conversationsPrefix, userID)
}

func path(userID, id string) string {
	return fmt.Sprintf("%s/%s.yaml", userPrefix(userID), id)
}

func (r *YAMLRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	exists, err := r.storage.Exists(ctx, path(c.UserID, c.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("conversation", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "conversation already exists", nil)
	}
	return r.write(ctx, c)
}

func (r *YAMLRepository) Get(ctx context.Context, userID, id string) (*conversation.Conversation, error) {
	data, err := r.storage.Read(ctx, path(userID, id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("conversation", err)
	}
	var c conversation.Conversation
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal conversation: %w", err))
	}
	return &c, nil
}

func (r *YAMLRepository) Latest(ctx context.Context, userID string) (*conversation.Conversation, error) {
	paths, err := r.storage.List(ctx, userPrefix(userID))
	if err != nil {
		return nil, cerr.WrapStorageReadError("conversations", err)
	}
	var latest *conversation.Conversation
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var c conversation.Conversation
		if err := yaml.Unmarshal(data, &c); err != nil {
			continue
		}
		if latest == nil || c.UpdatedAt.After(latest.UpdatedAt) {
			cc := c
			latest = &cc
		}
	}
	if latest == nil {
		return nil, cerr.NewError(cerr.NotFound, "conversation not found", nil)
	}
	return latest, nil
}

func (r *YAMLRepository) Update(ctx context.Context, c *conversation.Conversation) error {
	exists, err := r.storage.Exists(ctx, path(c.UserID, c.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("conversation", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "conversation not found", nil)
	}
	return r.write(ctx, c)
}

func (r *YAMLRepository) write(ctx context.Context, c *conversation.Conversation) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal conversation: %w", err))
	}
	if err := r.storage.Write(ctx, path(c.UserID, c.ID), data); err != nil {
		return cerr.WrapStorageWriteError("conversation", err)
	}
	return nil
}
