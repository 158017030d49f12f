package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
)

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// Grant inserts the achievement unless the same (user, type, level) was
// granted before. ON CONFLICT DO NOTHING makes the insert-if-absent
// atomic; there is no separate existence check to race against.
func (r *AchievementRepository) Grant(ctx context.Context, a *achievement.Achievement) (bool, error) {
	query := `
		INSERT INTO achievements (id, user_id, achievement_type, level_earned, earned_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, achievement_type, level_earned) DO NOTHING
	`

	result, err := r.conn.querier(ctx).Exec(ctx, query,
		a.ID, a.UserID, a.Type, a.LevelEarned, a.EarnedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return false, shared.NewDomainError("achievement", "Grant", shared.ErrNotFound, "user not found")
		}
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListByUser returns a user's achievements, newest first.
func (r *AchievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*achievement.Achievement, error) {
	query := `
		SELECT id, user_id, achievement_type, level_earned, earned_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY earned_at DESC
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var out []*achievement.Achievement
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.LevelEarned, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
