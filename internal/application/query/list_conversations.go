package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/conversation"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
)

// Conversation listing limits. A zero or negative requested limit falls
// back to the default; anything above the cap is clamped.
const (
	DefaultConversationLimit = 20
	MaxConversationLimit     = 100
)

// ListConversationsQuery requests one user's learning history.
type ListConversationsQuery struct {
	UserID uuid.UUID
	Limit  int
}

// ListConversationsHandler serves the learning-history read path.
type ListConversationsHandler struct {
	users         user.Repository
	conversations conversation.Repository
}

// NewListConversationsHandler creates the handler.
func NewListConversationsHandler(users user.Repository, conversations conversation.Repository) *ListConversationsHandler {
	return &ListConversationsHandler{users: users, conversations: conversations}
}

// Handle returns the user's transcripts, newest first. An unknown user
// is a not-found error; a user without sessions gets an empty list.
func (h *ListConversationsHandler) Handle(ctx context.Context, q ListConversationsQuery) ([]*conversation.Conversation, error) {
	if _, err := h.users.GetByID(ctx, q.UserID); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultConversationLimit
	}
	if limit > MaxConversationLimit {
		limit = MaxConversationLimit
	}
	return h.conversations.ListConversations(ctx, q.UserID, limit)
}
