package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/streak"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
)

// AchievementGranter evaluates the unlock rule table against the user's
// progress and streak and inserts any newly qualifying grants. A
// collision on the (user, type, level) key means "already granted" and
// is silently skipped; only new grants are returned.
type AchievementGranter struct {
	rules        *achievement.RuleSet
	achievements achievement.Repository
	log          *logger.Logger
}

// NewAchievementGranter creates the granter.
func NewAchievementGranter(rules *achievement.RuleSet, achievements achievement.Repository, log *logger.Logger) *AchievementGranter {
	return &AchievementGranter{rules: rules, achievements: achievements, log: log}
}

// Evaluate runs inside the caller's transaction so grants commit or roll
// back together with the progress/streak update that triggered them.
// Either p or s may be nil.
func (g *AchievementGranter) Evaluate(ctx context.Context, userID uuid.UUID, p *progress.Progress, s *streak.Streak, now time.Time) ([]*achievement.Achievement, error) {
	candidates := g.rules.Candidates(p, s)

	granted := make([]*achievement.Achievement, 0, len(candidates))
	for _, c := range candidates {
		a := achievement.New(userID, c.Type, c.LevelEarned, now)
		inserted, err := g.achievements.Grant(ctx, a)
		if err != nil {
			return nil, err
		}
		if inserted {
			granted = append(granted, a)
			g.log.Info("achievement granted",
				logger.String("user_id", userID.String()),
				logger.String("type", a.Type),
				logger.Int("level_earned", a.LevelEarned),
			)
		}
	}
	return granted, nil
}
