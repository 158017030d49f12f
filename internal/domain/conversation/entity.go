// Package conversation holds the append-only transcript and analytics
// records. Rows are immutable once written; N log calls produce N rows.
package conversation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
)

// Message is one turn of a tutoring transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is one complete tutoring session transcript.
type Conversation struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Level           int
	LessonNumber    int
	Messages        []Message
	DurationSeconds int
	CreatedAt       time.Time
}

// NewConversation builds an immutable conversation record.
func NewConversation(userID uuid.UUID, level, lessonNumber int, messages []Message, durationSeconds int, now time.Time) (*Conversation, error) {
	if len(messages) == 0 {
		return nil, shared.NewDomainError("conversation", "New", shared.ErrValidation, "transcript cannot be empty")
	}
	for _, m := range messages {
		if strings.TrimSpace(m.Role) == "" || strings.TrimSpace(m.Content) == "" {
			return nil, shared.NewDomainError("conversation", "New", shared.ErrValidation, "message role and content are required")
		}
	}
	if durationSeconds < 0 {
		return nil, shared.NewDomainError("conversation", "New", shared.ErrValidation, "duration cannot be negative")
	}
	if level < 0 || lessonNumber < 1 {
		return nil, shared.NewDomainError("conversation", "New", shared.ErrValidation, "invalid curriculum position")
	}

	return &Conversation{
		ID:              uuid.New(),
		UserID:          userID,
		Level:           level,
		LessonNumber:    lessonNumber,
		Messages:        messages,
		DurationSeconds: durationSeconds,
		CreatedAt:       now,
	}, nil
}

// StudentQuestion is one question/answer analytics record. It keeps only
// a weak reference to the user: the record outlives user deletion with
// the reference cleared.
type StudentQuestion struct {
	ID           uuid.UUID
	UserID       *uuid.UUID // nil for orphaned analytics entries
	Timestamp    time.Time
	StudentLevel string
	LessonNumber int
	Question     string
	Response     string
	Module       string
	LessonName   string
}

// NewStudentQuestion builds an immutable analytics record. The user id
// is optional; orphaned entries are valid.
func NewStudentQuestion(userID *uuid.UUID, studentLevel string, lessonNumber int, question, response, module, lessonName string, now time.Time) (*StudentQuestion, error) {
	if strings.TrimSpace(question) == "" {
		return nil, shared.NewDomainError("conversation", "NewQuestion", shared.ErrValidation, "question cannot be empty")
	}
	if strings.TrimSpace(response) == "" {
		return nil, shared.NewDomainError("conversation", "NewQuestion", shared.ErrValidation, "response cannot be empty")
	}

	return &StudentQuestion{
		ID:           uuid.New(),
		UserID:       userID,
		Timestamp:    now,
		StudentLevel: studentLevel,
		LessonNumber: lessonNumber,
		Question:     question,
		Response:     response,
		Module:       module,
		LessonName:   lessonName,
	}, nil
}
