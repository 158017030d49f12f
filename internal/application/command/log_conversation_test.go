package command

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/conversation"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
)

func transcript() []conversation.Message {
	return []conversation.Message{
		{Role: "user", Content: "How do I conjugate ser?"},
		{Role: "assistant", Content: "Sou, es, e..."},
	}
}

func TestLogConversation_EveryCallAppendsARow(t *testing.T) {
	repo := &fakeConversationRepo{}
	h := NewLogConversationHandler(repo, nil, testLogger())
	userID := uuid.New()

	cmd := LogConversationCommand{
		UserID: userID, Level: 1, LessonNumber: 2,
		Messages: transcript(), DurationSeconds: 300,
	}

	first, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "identical payloads still produce distinct rows")
	assert.Len(t, repo.conversations, 2)
}

func TestLogConversation_Validation(t *testing.T) {
	h := NewLogConversationHandler(&fakeConversationRepo{}, nil, testLogger())

	cases := []LogConversationCommand{
		{UserID: uuid.Nil, Level: 1, LessonNumber: 1, Messages: transcript()},
		{UserID: uuid.New(), Level: 1, LessonNumber: 1, Messages: nil},
		{UserID: uuid.New(), Level: 1, LessonNumber: 1, Messages: []conversation.Message{{Role: "user", Content: ""}}},
		{UserID: uuid.New(), Level: 1, LessonNumber: 1, Messages: transcript(), DurationSeconds: -1},
		{UserID: uuid.New(), Level: 1, LessonNumber: 0, Messages: transcript()},
	}
	for _, cmd := range cases {
		_, err := h.Handle(context.Background(), cmd)
		assert.True(t, shared.IsValidation(err), "command %+v must fail validation", cmd)
	}
}

func TestLogQuestion_AppendsWithOptionalUser(t *testing.T) {
	repo := &fakeConversationRepo{}
	inv := &fakeInvalidator{}
	h := NewLogQuestionHandler(repo, inv, testLogger())

	userID := uuid.New()
	q, err := h.Handle(context.Background(), LogQuestionCommand{
		UserID: &userID, StudentLevel: "beginner", LessonNumber: 1,
		Question: "What does hola mean?", Response: "Hello.",
	})
	require.NoError(t, err)
	assert.Equal(t, &userID, q.UserID)
	assert.Len(t, inv.calls, 1)

	orphan, err := h.Handle(context.Background(), LogQuestionCommand{
		Question: "Anonymous question", Response: "Answer.",
	})
	require.NoError(t, err)
	assert.Nil(t, orphan.UserID)
	assert.Len(t, inv.calls, 1, "orphaned entry has no cache to invalidate")
	assert.Len(t, repo.questions, 2)
}

func TestLogQuestion_Validation(t *testing.T) {
	h := NewLogQuestionHandler(&fakeConversationRepo{}, nil, testLogger())

	_, err := h.Handle(context.Background(), LogQuestionCommand{Response: "a"})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), LogQuestionCommand{Question: "a"})
	assert.True(t, shared.IsValidation(err))
}
