package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/conversation"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
)

// LogConversationCommand appends one tutoring session transcript.
type LogConversationCommand struct {
	UserID          uuid.UUID
	Level           int
	LessonNumber    int
	Messages        []conversation.Message
	DurationSeconds int
}

// LogConversationHandler is a pure append: a new immutable record per
// call, existing rows never touched.
type LogConversationHandler struct {
	conversations conversation.Repository
	stats         StatsInvalidator
	log           *logger.Logger
	now           func() time.Time
}

// NewLogConversationHandler creates the handler. stats may be nil.
func NewLogConversationHandler(conversations conversation.Repository, stats StatsInvalidator, log *logger.Logger) *LogConversationHandler {
	return &LogConversationHandler{
		conversations: conversations,
		stats:         stats,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Handle validates and stores the transcript.
func (h *LogConversationHandler) Handle(ctx context.Context, cmd LogConversationCommand) (*conversation.Conversation, error) {
	if cmd.UserID == uuid.Nil {
		return nil, shared.NewDomainError("conversation", "Log", shared.ErrValidation, "user id is required")
	}

	c, err := conversation.NewConversation(cmd.UserID, cmd.Level, cmd.LessonNumber, cmd.Messages, cmd.DurationSeconds, h.now())
	if err != nil {
		return nil, err
	}
	if err := h.conversations.AppendConversation(ctx, c); err != nil {
		return nil, err
	}

	h.invalidateStats(ctx, cmd.UserID)
	h.log.Info("conversation logged",
		logger.String("user_id", cmd.UserID.String()),
		logger.Int("messages", len(c.Messages)),
		logger.Int("duration_seconds", c.DurationSeconds),
	)
	return c, nil
}

func (h *LogConversationHandler) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if h.stats == nil {
		return
	}
	if err := h.stats.InvalidateUserStats(ctx, userID); err != nil {
		h.log.Warn("stats cache invalidation failed",
			logger.String("user_id", userID.String()), logger.Err(err))
	}
}

// LogQuestionCommand appends one question/answer analytics record. The
// user id is optional; orphaned analytics entries are valid.
type LogQuestionCommand struct {
	UserID       *uuid.UUID
	StudentLevel string
	LessonNumber int
	Question     string
	Response     string
	Module       string
	LessonName   string
}

// LogQuestionHandler appends immutable analytics records.
type LogQuestionHandler struct {
	conversations conversation.Repository
	stats         StatsInvalidator
	log           *logger.Logger
	now           func() time.Time
}

// NewLogQuestionHandler creates the handler. stats may be nil.
func NewLogQuestionHandler(conversations conversation.Repository, stats StatsInvalidator, log *logger.Logger) *LogQuestionHandler {
	return &LogQuestionHandler{
		conversations: conversations,
		stats:         stats,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Handle validates and stores the record.
func (h *LogQuestionHandler) Handle(ctx context.Context, cmd LogQuestionCommand) (*conversation.StudentQuestion, error) {
	q, err := conversation.NewStudentQuestion(cmd.UserID, cmd.StudentLevel, cmd.LessonNumber,
		cmd.Question, cmd.Response, cmd.Module, cmd.LessonName, h.now())
	if err != nil {
		return nil, err
	}
	if err := h.conversations.AppendQuestion(ctx, q); err != nil {
		return nil, err
	}

	if cmd.UserID != nil && h.stats != nil {
		if err := h.stats.InvalidateUserStats(ctx, *cmd.UserID); err != nil {
			h.log.Warn("stats cache invalidation failed",
				logger.String("user_id", cmd.UserID.String()), logger.Err(err))
		}
	}
	h.log.Info("question logged", logger.String("lesson_name", q.LessonName))
	return q, nil
}
