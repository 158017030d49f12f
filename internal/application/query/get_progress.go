package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/streak"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
)

// ProgressSnapshot combines a user's progress and streak the way the
// client dashboard consumes them. Users without progress or streak rows
// get the curriculum defaults and zero streaks.
type ProgressSnapshot struct {
	CurrentLevel          int        `json:"current_level"`
	CurrentModule         int        `json:"current_module"`
	CurrentLesson         int        `json:"current_lesson"`
	CompletedLessons      []string   `json:"completed_lessons"`
	TotalLessonsCompleted int        `json:"total_lessons_completed"`
	CurrentStreak         int        `json:"current_streak"`
	LongestStreak         int        `json:"longest_streak"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// GetProgressQuery requests one user's progress snapshot.
type GetProgressQuery struct {
	UserID uuid.UUID
}

// GetProgressHandler serves the progress read path.
type GetProgressHandler struct {
	users    user.Repository
	progress progress.Repository
	streaks  streak.Repository
}

// NewGetProgressHandler creates the handler.
func NewGetProgressHandler(users user.Repository, progressRepo progress.Repository, streaks streak.Repository) *GetProgressHandler {
	return &GetProgressHandler{users: users, progress: progressRepo, streaks: streaks}
}

// Handle returns the snapshot. An unknown user is a not-found error;
// missing progress or streak rows are defaults, not errors.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressSnapshot, error) {
	if _, err := h.users.GetByID(ctx, q.UserID); err != nil {
		return nil, err
	}

	snapshot := &ProgressSnapshot{
		CurrentLevel:     progress.DefaultLevel,
		CurrentModule:    progress.DefaultModule,
		CurrentLesson:    progress.DefaultLesson,
		CompletedLessons: []string{},
	}

	p, err := h.progress.Get(ctx, q.UserID)
	switch {
	case err == nil:
		snapshot.CurrentLevel = p.CurrentLevel
		snapshot.CurrentModule = p.CurrentModule
		snapshot.CurrentLesson = p.CurrentLesson
		snapshot.CompletedLessons = p.CompletedLessons
		snapshot.TotalLessonsCompleted = p.TotalLessonsCompleted
		updated := p.UpdatedAt
		snapshot.UpdatedAt = &updated
	case shared.IsNotFound(err):
		// defaults stand
	default:
		return nil, err
	}

	s, err := h.streaks.Get(ctx, q.UserID)
	switch {
	case err == nil:
		snapshot.CurrentStreak = s.CurrentStreak
		snapshot.LongestStreak = s.LongestStreak
	case shared.IsNotFound(err):
		// defaults stand
	default:
		return nil, err
	}

	return snapshot, nil
}
