package conversation

import "context"

type Repository interface {
	Create(ctx context.Context, c *Conversation) error
	Get(ctx context.Context, userID, id string) (*Conversation, error)
	// Latest returns the user's most recently updated conversation, or a
	// not-found error when the user has none yet.
	Latest(ctx context.Context, userID string) (*Conversation, error)
	Update(ctx context.Context, c *Conversation) error
}
