package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
)

// ListAchievementsQuery requests one user's earned achievements.
type ListAchievementsQuery struct {
	UserID uuid.UUID
}

// ListAchievementsHandler serves the achievements read path.
type ListAchievementsHandler struct {
	users        user.Repository
	achievements achievement.Repository
}

// NewListAchievementsHandler creates the handler.
func NewListAchievementsHandler(users user.Repository, achievements achievement.Repository) *ListAchievementsHandler {
	return &ListAchievementsHandler{users: users, achievements: achievements}
}

// Handle returns the user's achievements, newest first. An unknown user
// is a not-found error; a user without grants gets an empty list.
func (h *ListAchievementsHandler) Handle(ctx context.Context, q ListAchievementsQuery) ([]*achievement.Achievement, error) {
	if _, err := h.users.GetByID(ctx, q.UserID); err != nil {
		return nil, err
	}
	return h.achievements.ListByUser(ctx, q.UserID)
}
