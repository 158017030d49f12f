package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/application/query"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/timeutil"
)

// StatsReader implements query.StatsReader on top of the user_stats
// view. One row per user; missing related rows appear as zero counts.
type StatsReader struct {
	conn *Connection
}

// NewStatsReader creates a new StatsReader.
func NewStatsReader(conn *Connection) *StatsReader {
	return &StatsReader{conn: conn}
}

// ReadUserStats returns the derived stats for one user.
func (r *StatsReader) ReadUserStats(ctx context.Context, userID uuid.UUID) (*query.UserStats, error) {
	q := `
		SELECT user_id, email, name,
		       current_level, current_module, current_lesson, total_lessons_completed,
		       current_streak, longest_streak, last_activity_date,
		       conversation_count, question_count, achievement_count
		FROM user_stats
		WHERE user_id = $1
	`

	var stats query.UserStats
	var lastActivity *time.Time

	err := r.conn.querier(ctx).QueryRow(ctx, q, userID).Scan(
		&stats.UserID, &stats.Email, &stats.Name,
		&stats.CurrentLevel, &stats.CurrentModule, &stats.CurrentLesson, &stats.TotalLessonsCompleted,
		&stats.CurrentStreak, &stats.LongestStreak, &lastActivity,
		&stats.ConversationCount, &stats.QuestionCount, &stats.AchievementCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewDomainError("stats", "Read", shared.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to read user stats: %w", err)
	}

	if lastActivity != nil {
		d := timeutil.DateOnly(*lastActivity)
		stats.LastActivityDate = &d
	}
	return &stats, nil
}
