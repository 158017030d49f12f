package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/streak"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/retry"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/timeutil"
)

// StreakRepository implements streak.Repository for PostgreSQL.
type StreakRepository struct {
	conn *Connection
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(conn *Connection) *StreakRepository {
	return &StreakRepository{conn: conn}
}

const streakColumns = "id, user_id, current_streak, longest_streak, last_activity_date"

// Get returns the streak row for a user.
func (r *StreakRepository) Get(ctx context.Context, userID uuid.UUID) (*streak.Streak, error) {
	query := fmt.Sprintf("SELECT %s FROM learning_streaks WHERE user_id = $1", streakColumns)
	return r.scanStreak(r.conn.querier(ctx).QueryRow(ctx, query, userID))
}

// GetForUpdate locks and returns the streak row. Must run inside a
// transaction.
func (r *StreakRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*streak.Streak, error) {
	query := fmt.Sprintf("SELECT %s FROM learning_streaks WHERE user_id = $1 FOR UPDATE", streakColumns)
	return r.scanStreak(r.conn.querier(ctx).QueryRow(ctx, query, userID))
}

// Create inserts the streak row. A concurrent first activity for the
// same user surfaces as a retryable already-exists error so the
// enclosing transaction re-runs and takes the update path.
func (r *StreakRepository) Create(ctx context.Context, s *streak.Streak) error {
	query := `
		INSERT INTO learning_streaks (id, user_id, current_streak, longest_streak, last_activity_date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		s.ID, s.UserID, s.CurrentStreak, s.LongestStreak, s.LastActivityDate,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return retry.Retryable(shared.NewDomainError("streak", "Create", shared.ErrAlreadyExists, "streak row already exists"))
		}
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("streak", "Create", shared.ErrNotFound, "user not found")
		}
		return fmt.Errorf("failed to create streak: %w", err)
	}
	return nil
}

// Save updates the streak row.
func (r *StreakRepository) Save(ctx context.Context, s *streak.Streak) error {
	query := `
		UPDATE learning_streaks SET
			current_streak = $1,
			longest_streak = $2,
			last_activity_date = $3
		WHERE user_id = $4
	`

	result, err := r.conn.querier(ctx).Exec(ctx, query,
		s.CurrentStreak, s.LongestStreak, s.LastActivityDate, s.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.NewDomainError("streak", "Save", shared.ErrNotFound, "streak row not found")
	}
	return nil
}

func (r *StreakRepository) scanStreak(row pgx.Row) (*streak.Streak, error) {
	var s streak.Streak
	var lastActivity time.Time

	err := row.Scan(&s.ID, &s.UserID, &s.CurrentStreak, &s.LongestStreak, &lastActivity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewDomainError("streak", "Get", shared.ErrNotFound, "streak row not found")
		}
		return nil, fmt.Errorf("failed to scan streak: %w", err)
	}

	// DATE columns come back at midnight in the session timezone;
	// normalize to the UTC calendar date the domain works with.
	s.LastActivityDate = timeutil.DateOnly(lastActivity)
	return &s, nil
}
