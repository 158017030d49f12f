package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/retry"
)

// ProgressRepository implements progress.Repository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

const progressColumns = `id, user_id, current_level, current_module, current_lesson,
	completed_lessons, total_lessons_completed, updated_at`

// Get returns the progress row for a user.
func (r *ProgressRepository) Get(ctx context.Context, userID uuid.UUID) (*progress.Progress, error) {
	query := fmt.Sprintf("SELECT %s FROM user_progress WHERE user_id = $1", progressColumns)
	return r.scanProgress(r.conn.querier(ctx).QueryRow(ctx, query, userID))
}

// GetForUpdate locks and returns the progress row. Must run inside a
// transaction; the lock serializes concurrent read-modify-write cycles
// for the same user.
func (r *ProgressRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*progress.Progress, error) {
	query := fmt.Sprintf("SELECT %s FROM user_progress WHERE user_id = $1 FOR UPDATE", progressColumns)
	return r.scanProgress(r.conn.querier(ctx).QueryRow(ctx, query, userID))
}

// Create inserts the progress row. A concurrent first-completion for the
// same user is surfaced as a retryable already-exists error so the
// enclosing transaction re-runs and takes the update path instead.
func (r *ProgressRepository) Create(ctx context.Context, p *progress.Progress) error {
	query := `
		INSERT INTO user_progress (
			id, user_id, current_level, current_module, current_lesson,
			completed_lessons, total_lessons_completed, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	lessons, err := json.Marshal(p.CompletedLessons)
	if err != nil {
		return fmt.Errorf("failed to marshal completed lessons: %w", err)
	}

	_, err = r.conn.querier(ctx).Exec(ctx, query,
		p.ID, p.UserID, p.CurrentLevel, p.CurrentModule, p.CurrentLesson,
		lessons, p.TotalLessonsCompleted, p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return retry.Retryable(shared.NewDomainError("progress", "Create", shared.ErrAlreadyExists, "progress row already exists"))
		}
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("progress", "Create", shared.ErrNotFound, "user not found")
		}
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

// Save updates the progress row.
func (r *ProgressRepository) Save(ctx context.Context, p *progress.Progress) error {
	query := `
		UPDATE user_progress SET
			current_level = $1,
			current_module = $2,
			current_lesson = $3,
			completed_lessons = $4,
			total_lessons_completed = $5,
			updated_at = $6
		WHERE user_id = $7
	`

	lessons, err := json.Marshal(p.CompletedLessons)
	if err != nil {
		return fmt.Errorf("failed to marshal completed lessons: %w", err)
	}

	result, err := r.conn.querier(ctx).Exec(ctx, query,
		p.CurrentLevel, p.CurrentModule, p.CurrentLesson,
		lessons, p.TotalLessonsCompleted, p.UpdatedAt, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.NewDomainError("progress", "Save", shared.ErrNotFound, "progress row not found")
	}
	return nil
}

func (r *ProgressRepository) scanProgress(row pgx.Row) (*progress.Progress, error) {
	var p progress.Progress
	var lessons []byte

	err := row.Scan(&p.ID, &p.UserID, &p.CurrentLevel, &p.CurrentModule, &p.CurrentLesson,
		&lessons, &p.TotalLessonsCompleted, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewDomainError("progress", "Get", shared.ErrNotFound, "progress row not found")
		}
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	if err := json.Unmarshal(lessons, &p.CompletedLessons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed lessons: %w", err)
	}
	return &p, nil
}
