package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/streak"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
)

// CurriculumBounds caps the level/module/lesson values a completion
// event may carry. Values outside the bounds are a validation error.
type CurriculumBounds struct {
	MaxLevel  int
	MaxModule int
	MaxLesson int
}

// DefaultCurriculumBounds matches the shipped curriculum.
func DefaultCurriculumBounds() CurriculumBounds {
	return CurriculumBounds{MaxLevel: 10, MaxModule: 20, MaxLesson: 50}
}

// RecordCompletionCommand marks one lesson as completed.
type RecordCompletionCommand struct {
	UserID uuid.UUID
	Level  int
	Module int
	Lesson int
}

// Validate checks the curriculum position against the configured bounds.
func (c RecordCompletionCommand) Validate(bounds CurriculumBounds) error {
	if c.UserID == uuid.Nil {
		return shared.NewDomainError("progress", "RecordCompletion", shared.ErrValidation, "user id is required")
	}
	if c.Level < 0 || c.Level > bounds.MaxLevel {
		return shared.NewDomainError("progress", "RecordCompletion", shared.ErrValidation,
			fmt.Sprintf("level must be between 0 and %d", bounds.MaxLevel))
	}
	if c.Module < 0 || c.Module > bounds.MaxModule {
		return shared.NewDomainError("progress", "RecordCompletion", shared.ErrValidation,
			fmt.Sprintf("module must be between 0 and %d", bounds.MaxModule))
	}
	if c.Lesson < 1 || c.Lesson > bounds.MaxLesson {
		return shared.NewDomainError("progress", "RecordCompletion", shared.ErrValidation,
			fmt.Sprintf("lesson must be between 1 and %d", bounds.MaxLesson))
	}
	return nil
}

// RecordCompletionResult reports what the completion changed.
type RecordCompletionResult struct {
	Progress        *progress.Progress
	Changed         bool
	NewAchievements []*achievement.Achievement
}

// RecordCompletionHandler owns the progress row: it appends to the
// completed-lesson set idempotently, advances the position pointers
// monotonically, and re-evaluates achievements in the same transaction.
type RecordCompletionHandler struct {
	users    user.Repository
	progress progress.Repository
	streaks  streak.Repository
	granter  *AchievementGranter
	tx       TxRunner
	stats    StatsInvalidator
	bounds   CurriculumBounds
	log      *logger.Logger
	now      func() time.Time
}

// NewRecordCompletionHandler creates the handler. stats may be nil.
func NewRecordCompletionHandler(
	users user.Repository,
	progressRepo progress.Repository,
	streaks streak.Repository,
	granter *AchievementGranter,
	tx TxRunner,
	stats StatsInvalidator,
	bounds CurriculumBounds,
	log *logger.Logger,
) *RecordCompletionHandler {
	return &RecordCompletionHandler{
		users:    users,
		progress: progressRepo,
		streaks:  streaks,
		granter:  granter,
		tx:       tx,
		stats:    stats,
		bounds:   bounds,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle records the completion. The progress row is created on first
// use; an unknown user fails with a not-found error.
func (h *RecordCompletionHandler) Handle(ctx context.Context, cmd RecordCompletionCommand) (*RecordCompletionResult, error) {
	if err := cmd.Validate(h.bounds); err != nil {
		return nil, err
	}

	var result *RecordCompletionResult
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := h.now()

		if _, err := h.users.GetByID(ctx, cmd.UserID); err != nil {
			return err
		}

		p, err := h.progress.GetForUpdate(ctx, cmd.UserID)
		switch {
		case err == nil:
			changed := p.RecordCompletion(cmd.Level, cmd.Module, cmd.Lesson, now)
			if changed {
				if err := h.progress.Save(ctx, p); err != nil {
					return err
				}
			}
			result = &RecordCompletionResult{Progress: p, Changed: changed}

		case shared.IsNotFound(err):
			p = progress.New(cmd.UserID, now)
			p.RecordCompletion(cmd.Level, cmd.Module, cmd.Lesson, now)
			if err := h.progress.Create(ctx, p); err != nil {
				return err
			}
			result = &RecordCompletionResult{Progress: p, Changed: true}

		default:
			return err
		}

		s, err := h.streaks.Get(ctx, cmd.UserID)
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

	if result.Changed {
		h.invalidateStats(ctx, cmd.UserID)
	}
	h.log.Info("lesson completion recorded",
		logger.String("user_id", cmd.UserID.String()),
		logger.String("lesson", progress.LessonKey(cmd.Level, cmd.Module, cmd.Lesson)),
		logger.Bool("changed", result.Changed),
		logger.Int("new_achievements", len(result.NewAchievements)),
	)
	return result, nil
}

func (h *RecordCompletionHandler) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if h.stats == nil {
		return
	}
	if err := h.stats.InvalidateUserStats(ctx, userID); err != nil {
		h.log.Warn("stats cache invalidation failed",
			logger.String("user_id", userID.String()), logger.Err(err))
	}
}
