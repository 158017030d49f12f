package command

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/retry"
)

func newTestUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.New("clerk_test", "test@example.com", "Test", time.Now().UTC())
	require.NoError(t, err)
	return u
}

func newCompletionHandler(t *testing.T, u *user.User) (*RecordCompletionHandler, *fakeProgressRepo, *fakeStreakRepo, *fakeAchievementRepo, *fakeInvalidator) {
	t.Helper()
	progressRepo := newFakeProgressRepo()
	streaks := newFakeStreakRepo()
	achievements := newFakeAchievementRepo()
	inv := &fakeInvalidator{}
	granter := NewAchievementGranter(achievement.NewRuleSet(achievement.DefaultRulesConfig()), achievements, testLogger())

	h := NewRecordCompletionHandler(
		newFakeUserRepo(u), progressRepo, streaks, granter,
		fakeTx{}, inv, DefaultCurriculumBounds(), testLogger(),
	)
	return h, progressRepo, streaks, achievements, inv
}

func TestRecordCompletion_FirstCompletionCreatesRow(t *testing.T) {
	u := newTestUser(t)
	h, progressRepo, _, _, inv := newCompletionHandler(t, u)

	res, err := h.Handle(context.Background(), RecordCompletionCommand{
		UserID: u.ID, Level: 1, Module: 2, Lesson: 3,
	})

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.Progress.TotalLessonsCompleted)
	assert.Equal(t, 1, res.Progress.CurrentLevel)
	assert.Equal(t, 2, res.Progress.CurrentModule)
	assert.Equal(t, 3, res.Progress.CurrentLesson)
	assert.Contains(t, progressRepo.byUser, u.ID)
	assert.Len(t, inv.calls, 1)
}

func TestRecordCompletion_DuplicateUnchanged(t *testing.T) {
	u := newTestUser(t)
	h, _, _, _, inv := newCompletionHandler(t, u)

	cmd := RecordCompletionCommand{UserID: u.ID, Level: 1, Module: 2, Lesson: 3}
	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Equal(t, 1, res.Progress.TotalLessonsCompleted)
	assert.Len(t, inv.calls, 1, "unchanged completion must not invalidate the cache")
}

func TestRecordCompletion_GrantsAchievementsOnce(t *testing.T) {
	u := newTestUser(t)
	h, _, _, _, _ := newCompletionHandler(t, u)

	res, err := h.Handle(context.Background(), RecordCompletionCommand{
		UserID: u.ID, Level: 1, Module: 0, Lesson: 1,
	})
	require.NoError(t, err)

	// First lesson unlocks lessons_1 and level_reached for level 1.
	types := make(map[string]int)
	for _, a := range res.NewAchievements {
		types[a.Type]++
	}
	assert.Equal(t, 1, types["lessons_1"])
	assert.Equal(t, 1, types[achievement.TypeLevelReached])

	// A second qualifying completion must not re-grant anything earned.
	res, err = h.Handle(context.Background(), RecordCompletionCommand{
		UserID: u.ID, Level: 1, Module: 0, Lesson: 2,
	})
	require.NoError(t, err)
	for _, a := range res.NewAchievements {
		assert.NotEqual(t, "lessons_1", a.Type)
		assert.NotEqual(t, achievement.TypeLevelReached, a.Type)
	}
}

func TestRecordCompletion_PointersOnlyAdvance(t *testing.T) {
	u := newTestUser(t)
	h, _, _, _, _ := newCompletionHandler(t, u)

	_, err := h.Handle(context.Background(), RecordCompletionCommand{
		UserID: u.ID, Level: 4, Module: 5, Lesson: 6,
	})
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), RecordCompletionCommand{
		UserID: u.ID, Level: 1, Module: 1, Lesson: 1,
	})
	require.NoError(t, err)

	assert.True(t, res.Changed, "the set still grew")
	assert.Equal(t, 4, res.Progress.CurrentLevel)
	assert.Equal(t, 5, res.Progress.CurrentModule)
	assert.Equal(t, 6, res.Progress.CurrentLesson)
}

// racingProgressRepo loses the first insert to a concurrent transaction:
// the competitor's row appears and Create reports the retryable conflict
// the storage layer raises for a unique violation.
type racingProgressRepo struct {
	*fakeProgressRepo
	competitor *progress.Progress
	raced      bool
}

func (r *racingProgressRepo) Create(ctx context.Context, p *progress.Progress) error {
	if !r.raced {
		r.raced = true
		r.byUser[r.competitor.UserID] = r.competitor
		return retry.Retryable(shared.NewDomainError("progress", "Create", shared.ErrAlreadyExists, "progress row already exists"))
	}
	return r.fakeProgressRepo.Create(ctx, p)
}

func TestRecordCompletion_CreateRaceConvergesOnUpdate(t *testing.T) {
	u := newTestUser(t)
	now := time.Now().UTC()

	competitor := progress.New(u.ID, now)
	competitor.RecordCompletion(0, 0, 1, now)

	progressRepo := &racingProgressRepo{fakeProgressRepo: newFakeProgressRepo(), competitor: competitor}
	granter := NewAchievementGranter(achievement.NewRuleSet(achievement.DefaultRulesConfig()), newFakeAchievementRepo(), testLogger())
	h := NewRecordCompletionHandler(
		newFakeUserRepo(u), progressRepo, newFakeStreakRepo(), granter,
		retryingTx{}, &fakeInvalidator{}, DefaultCurriculumBounds(), testLogger(),
	)

	res, err := h.Handle(context.Background(), RecordCompletionCommand{
		UserID: u.ID, Level: 0, Module: 0, Lesson: 2,
	})

	require.NoError(t, err)
	assert.True(t, progressRepo.raced)
	assert.True(t, res.Changed)
	assert.True(t, res.Progress.HasCompleted(progress.LessonKey(0, 0, 1)), "the concurrent completion must survive")
	assert.True(t, res.Progress.HasCompleted(progress.LessonKey(0, 0, 2)))
	assert.Equal(t, 2, res.Progress.TotalLessonsCompleted)
}

func TestRecordCompletion_UnknownUser(t *testing.T) {
	u := newTestUser(t)
	h, _, _, _, _ := newCompletionHandler(t, u)

	_, err := h.Handle(context.Background(), RecordCompletionCommand{
		UserID: uuid.New(), Level: 0, Module: 0, Lesson: 1,
	})

	assert.True(t, shared.IsNotFound(err))
}

func TestRecordCompletion_BoundsValidation(t *testing.T) {
	u := newTestUser(t)
	h, _, _, _, _ := newCompletionHandler(t, u)

	cases := []RecordCompletionCommand{
		{UserID: u.ID, Level: -1, Module: 0, Lesson: 1},
		{UserID: u.ID, Level: 99, Module: 0, Lesson: 1},
		{UserID: u.ID, Level: 0, Module: 0, Lesson: 0},
		{UserID: uuid.Nil, Level: 0, Module: 0, Lesson: 1},
	}
	for _, cmd := range cases {
		_, err := h.Handle(context.Background(), cmd)
		assert.True(t, shared.IsValidation(err), "command %+v must fail validation", cmd)
	}
}
