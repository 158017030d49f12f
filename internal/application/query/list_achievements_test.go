package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
)

type fakeAchievementRepo struct {
	byUser map[uuid.UUID][]*achievement.Achievement
}

func (r *fakeAchievementRepo) Grant(context.Context, *achievement.Achievement) (bool, error) {
	return false, nil
}

func (r *fakeAchievementRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*achievement.Achievement, error) {
	return r.byUser[userID], nil
}

func TestListAchievements_ReturnsUserGrants(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	u, err := user.New("clerk_abc", "ana@example.com", "Ana", now)
	require.NoError(t, err)

	granted := []*achievement.Achievement{
		achievement.New(u.ID, "streak_3", 1, now),
		achievement.New(u.ID, "lessons_1", 0, now.Add(-time.Hour)),
	}

	h := NewListAchievementsHandler(
		&fakeUserRepo{byID: map[uuid.UUID]*user.User{u.ID: u}},
		&fakeAchievementRepo{byUser: map[uuid.UUID][]*achievement.Achievement{u.ID: granted}},
	)

	out, err := h.Handle(context.Background(), ListAchievementsQuery{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, granted, out)
}

func TestListAchievements_UserWithoutGrants(t *testing.T) {
	u, err := user.New("clerk_abc", "ana@example.com", "Ana", time.Now().UTC())
	require.NoError(t, err)

	h := NewListAchievementsHandler(
		&fakeUserRepo{byID: map[uuid.UUID]*user.User{u.ID: u}},
		&fakeAchievementRepo{byUser: map[uuid.UUID][]*achievement.Achievement{}},
	)

	out, err := h.Handle(context.Background(), ListAchievementsQuery{UserID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestListAchievements_UnknownUser(t *testing.T) {
	h := NewListAchievementsHandler(
		&fakeUserRepo{byID: map[uuid.UUID]*user.User{}},
		&fakeAchievementRepo{byUser: map[uuid.UUID][]*achievement.Achievement{}},
	)

	_, err := h.Handle(context.Background(), ListAchievementsQuery{UserID: uuid.New()})
	assert.True(t, shared.IsNotFound(err))
}
