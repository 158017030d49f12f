package conversation

import (
	"context"

	"github.com/google/uuid"
)

// Repository appends immutable conversation and analytics records.
// There are deliberately no update methods.
type Repository interface {
	// AppendConversation stores a new transcript. Returns
	// shared.ErrNotFound when the referenced user does not exist.
	AppendConversation(ctx context.Context, c *Conversation) error

	// AppendQuestion stores a new analytics record. A nil user reference
	// is valid; a non-nil reference to a missing user returns
	// shared.ErrNotFound.
	AppendQuestion(ctx context.Context, q *StudentQuestion) error

	ListConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*Conversation, error)
}
