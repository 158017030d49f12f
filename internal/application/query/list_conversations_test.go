package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/conversation"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
)

type fakeConversationRepo struct {
	byUser     map[uuid.UUID][]*conversation.Conversation
	lastLimit  int
	listCalled bool
}

func (r *fakeConversationRepo) AppendConversation(context.Context, *conversation.Conversation) error {
	return nil
}

func (r *fakeConversationRepo) AppendQuestion(context.Context, *conversation.StudentQuestion) error {
	return nil
}

func (r *fakeConversationRepo) ListConversations(_ context.Context, userID uuid.UUID, limit int) ([]*conversation.Conversation, error) {
	r.listCalled = true
	r.lastLimit = limit
	out := r.byUser[userID]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestConversation(t *testing.T, userID uuid.UUID, lesson int, at time.Time) *conversation.Conversation {
	t.Helper()
	c, err := conversation.NewConversation(userID, 1, lesson, []conversation.Message{
		{Role: "user", Content: "pergunta"},
		{Role: "assistant", Content: "resposta"},
	}, 120, at)
	require.NoError(t, err)
	return c
}

func TestListConversations_ReturnsUserHistory(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	u, err := user.New("clerk_abc", "ana@example.com", "Ana", now)
	require.NoError(t, err)

	history := []*conversation.Conversation{
		newTestConversation(t, u.ID, 2, now),
		newTestConversation(t, u.ID, 1, now.Add(-time.Hour)),
	}

	repo := &fakeConversationRepo{byUser: map[uuid.UUID][]*conversation.Conversation{u.ID: history}}
	h := NewListConversationsHandler(
		&fakeUserRepo{byID: map[uuid.UUID]*user.User{u.ID: u}},
		repo,
	)

	out, err := h.Handle(context.Background(), ListConversationsQuery{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, history, out)
	assert.Equal(t, DefaultConversationLimit, repo.lastLimit)
}

func TestListConversations_ClampsLimit(t *testing.T) {
	u, err := user.New("clerk_abc", "ana@example.com", "Ana", time.Now().UTC())
	require.NoError(t, err)

	repo := &fakeConversationRepo{byUser: map[uuid.UUID][]*conversation.Conversation{}}
	h := NewListConversationsHandler(
		&fakeUserRepo{byID: map[uuid.UUID]*user.User{u.ID: u}},
		repo,
	)

	_, err = h.Handle(context.Background(), ListConversationsQuery{UserID: u.ID, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)

	_, err = h.Handle(context.Background(), ListConversationsQuery{UserID: u.ID, Limit: 10_000})
	require.NoError(t, err)
	assert.Equal(t, MaxConversationLimit, repo.lastLimit)

	_, err = h.Handle(context.Background(), ListConversationsQuery{UserID: u.ID, Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, DefaultConversationLimit, repo.lastLimit)
}

func TestListConversations_UnknownUser(t *testing.T) {
	repo := &fakeConversationRepo{byUser: map[uuid.UUID][]*conversation.Conversation{}}
	h := NewListConversationsHandler(
		&fakeUserRepo{byID: map[uuid.UUID]*user.User{}},
		repo,
	)

	_, err := h.Handle(context.Background(), ListConversationsQuery{UserID: uuid.New()})
	assert.True(t, shared.IsNotFound(err))
	assert.False(t, repo.listCalled, "repository must not be queried for unknown users")
}
