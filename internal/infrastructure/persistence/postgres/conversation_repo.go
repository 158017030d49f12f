package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/conversation"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
)

// ConversationRepository implements conversation.Repository for
// PostgreSQL. Inserts only; transcripts and analytics rows are never
// updated.
type ConversationRepository struct {
	conn *Connection
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(conn *Connection) *ConversationRepository {
	return &ConversationRepository{conn: conn}
}

// AppendConversation stores a new transcript row.
func (r *ConversationRepository) AppendConversation(ctx context.Context, c *conversation.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, level, lesson_number, messages, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = r.conn.querier(ctx).Exec(ctx, query,
		c.ID, c.UserID, c.Level, c.LessonNumber, messages, c.DurationSeconds, c.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("conversation", "Append", shared.ErrNotFound, "user not found")
		}
		return fmt.Errorf("failed to append conversation: %w", err)
	}
	return nil
}

// AppendQuestion stores a new analytics row. The user reference may be
// nil for orphaned entries.
func (r *ConversationRepository) AppendQuestion(ctx context.Context, q *conversation.StudentQuestion) error {
	query := `
		INSERT INTO student_questions (
			id, user_id, timestamp, student_level, lesson_number,
			question, response, module, lesson_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		q.ID, q.UserID, q.Timestamp, q.StudentLevel, q.LessonNumber,
		q.Question, q.Response, q.Module, q.LessonName,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("conversation", "AppendQuestion", shared.ErrNotFound, "user not found")
		}
		return fmt.Errorf("failed to append question: %w", err)
	}
	return nil
}

// ListConversations returns a user's transcripts, newest first.
func (r *ConversationRepository) ListConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*conversation.Conversation, error) {
	query := `
		SELECT id, user_id, level, lesson_number, messages, duration_seconds, created_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var out []*conversation.Conversation
	for rows.Next() {
		var c conversation.Conversation
		var messages []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.Level, &c.LessonNumber, &messages, &c.DurationSeconds, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if err := json.Unmarshal(messages, &c.Messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
