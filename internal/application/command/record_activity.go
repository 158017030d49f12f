package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/streak"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/timeutil"
)

// RecordActivityCommand carries one qualifying activity (lesson
// completion, login) for a calendar date.
type RecordActivityCommand struct {
	UserID       uuid.UUID
	ActivityDate time.Time
}

// Validate checks the command fields.
func (c RecordActivityCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return shared.NewDomainError("streak", "RecordActivity", shared.ErrValidation, "user id is required")
	}
	if c.ActivityDate.IsZero() {
		return shared.NewDomainError("streak", "RecordActivity", shared.ErrValidation, "activity date is required")
	}
	return nil
}

// RecordActivityResult reports the streak transition and any newly
// unlocked achievements.
type RecordActivityResult struct {
	Streak          *streak.Streak
	Transition      streak.Transition
	NewAchievements []*achievement.Achievement
}

// RecordActivityHandler drives the streak state machine and re-evaluates
// achievements in the same transaction.
type RecordActivityHandler struct {
	users    user.Repository
	streaks  streak.Repository
	progress ProgressReader
	granter  *AchievementGranter
	tx       TxRunner
	stats    StatsInvalidator
	log      *logger.Logger
	now      func() time.Time
}

// ProgressReader is the read-only slice of the progress repository the
// streak path needs for achievement evaluation.
type ProgressReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*progress.Progress, error)
}

// NewRecordActivityHandler creates the handler. stats may be nil.
func NewRecordActivityHandler(
	users user.Repository,
	streaks streak.Repository,
	progressReader ProgressReader,
	granter *AchievementGranter,
	tx TxRunner,
	stats StatsInvalidator,
	log *logger.Logger,
) *RecordActivityHandler {
	return &RecordActivityHandler{
		users:    users,
		streaks:  streaks,
		progress: progressReader,
		granter:  granter,
		tx:       tx,
		stats:    stats,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle applies the activity date to the user's streak. Out-of-order
// dates fail and leave the streak untouched.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (*RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	date := timeutil.DateOnly(cmd.ActivityDate)

	var result *RecordActivityResult
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := h.now()

		if _, err := h.users.GetByID(ctx, cmd.UserID); err != nil {
			return err
		}

		s, err := h.streaks.GetForUpdate(ctx, cmd.UserID)
		switch {
		case err == nil:
			transition, err := s.RecordActivity(date)
			if err != nil {
				return err
			}
			if transition != streak.TransitionSameDay {
				if err := h.streaks.Save(ctx, s); err != nil {
					return err
				}
			}
			result = &RecordActivityResult{Streak: s, Transition: transition}

		case shared.IsNotFound(err):
			s = streak.New(cmd.UserID, date)
			if err := h.streaks.Create(ctx, s); err != nil {
				return err
			}
			result = &RecordActivityResult{Streak: s, Transition: streak.TransitionStarted}

		default:
			return err
		}

		p, err := h.progress.Get(ctx, cmd.UserID)
		if err != nil && !shared.IsNotFound(err) {
			return err
		}

		granted, err := h.granter.Evaluate(ctx, cmd.UserID, p, s, now)
		if err != nil {
			return err
		}
		result.NewAchievements = granted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Transition != streak.TransitionSameDay {
		h.invalidateStats(ctx, cmd.UserID)
	}
	h.log.Info("activity recorded",
		logger.String("user_id", cmd.UserID.String()),
		logger.String("transition", result.Transition.String()),
		logger.Int("current_streak", result.Streak.CurrentStreak),
	)
	return result, nil
}

func (h *RecordActivityHandler) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if h.stats == nil {
		return
	}
	if err := h.stats.InvalidateUserStats(ctx, userID); err != nil {
		h.log.Warn("stats cache invalidation failed",
			logger.String("user_id", userID.String()), logger.Err(err))
	}
}
