// Package query contains read operations (CQRS - Queries). Queries have
// no side effects on stored state.
package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
)

// UserStats is the derived per-user view: current progress and streak
// fields joined with counts of related rows. A user with no rows in a
// relation contributes zero to that count, never a missing field.
type UserStats struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`

	CurrentLevel          int `json:"current_level"`
	CurrentModule         int `json:"current_module"`
	CurrentLesson         int `json:"current_lesson"`
	TotalLessonsCompleted int `json:"total_lessons_completed"`

	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	ConversationCount int `json:"conversation_count"`
	QuestionCount     int `json:"question_count"`
	AchievementCount  int `json:"achievement_count"`
}

// StatsReader reads the derived user_stats view for one user. Returns
// shared.ErrNotFound when the user does not exist.
type StatsReader interface {
	ReadUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
}

// StatsCache is an optional cache in front of the reader. Get returns
// shared.ErrNotFound on a miss.
type StatsCache interface {
	GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
	SetUserStats(ctx context.Context, stats *UserStats) error
}

// GetUserStatsQuery requests the stats for one user.
type GetUserStatsQuery struct {
	UserID uuid.UUID
}

// GetUserStatsHandler serves the reporting/dashboard read path.
type GetUserStatsHandler struct {
	reader StatsReader
	cache  StatsCache
	log    *logger.Logger
}

// NewGetUserStatsHandler creates the handler. cache may be nil.
func NewGetUserStatsHandler(reader StatsReader, cache StatsCache, log *logger.Logger) *GetUserStatsHandler {
	return &GetUserStatsHandler{reader: reader, cache: cache, log: log}
}

// Handle returns the stats, serving from cache when possible. Cache
// failures fall through to the reader; they are logged, never surfaced.
func (h *GetUserStatsHandler) Handle(ctx context.Context, q GetUserStatsQuery) (*UserStats, error) {
	if h.cache != nil {
		if stats, err := h.cache.GetUserStats(ctx, q.UserID); err == nil {
			return stats, nil
		}
	}

	stats, err := h.reader.ReadUserStats(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.SetUserStats(ctx, stats); err != nil {
			h.log.Warn("stats cache write failed",
				logger.String("user_id", q.UserID.String()), logger.Err(err))
		}
	}
	return stats, nil
}
