package streak

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_StartsAtOne(t *testing.T) {
	s := New(uuid.New(), date(2025, 3, 1))

	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	assert.Equal(t, date(2025, 3, 1), s.LastActivityDate)
}

func TestNew_StripsTimeOfDay(t *testing.T) {
	s := New(uuid.New(), time.Date(2025, 3, 1, 23, 45, 12, 0, time.UTC))
	assert.Equal(t, date(2025, 3, 1), s.LastActivityDate)
}

func TestRecordActivity_SameDay(t *testing.T) {
	s := New(uuid.New(), date(2025, 3, 1))

	tr, err := s.RecordActivity(date(2025, 3, 1))

	assert.NoError(t, err)
	assert.Equal(t, TransitionSameDay, tr)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, date(2025, 3, 1), s.LastActivityDate)
}

func TestRecordActivity_NextDayExtends(t *testing.T) {
	s := New(uuid.New(), date(2025, 3, 1))

	tr, err := s.RecordActivity(date(2025, 3, 2))

	assert.NoError(t, err)
	assert.Equal(t, TransitionExtended, tr)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
	assert.Equal(t, date(2025, 3, 2), s.LastActivityDate)
}

func TestRecordActivity_GapResetsButKeepsLongest(t *testing.T) {
	s := New(uuid.New(), date(2025, 3, 1))
	s.RecordActivity(date(2025, 3, 2))
	s.RecordActivity(date(2025, 3, 3))

	tr, err := s.RecordActivity(date(2025, 3, 10))

	assert.NoError(t, err)
	assert.Equal(t, TransitionReset, tr)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
	assert.Equal(t, date(2025, 3, 10), s.LastActivityDate)
}

func TestRecordActivity_EarlierDateFailsUnchanged(t *testing.T) {
	s := New(uuid.New(), date(2025, 3, 5))
	s.RecordActivity(date(2025, 3, 6))

	tr, err := s.RecordActivity(date(2025, 3, 4))

	assert.Error(t, err)
	assert.True(t, shared.IsInvalidOrder(err))
	assert.Equal(t, Transition(0), tr)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, date(2025, 3, 6), s.LastActivityDate)
}

func TestRecordActivity_LongestNeverDecreases(t *testing.T) {
	s := New(uuid.New(), date(2025, 1, 1))

	// Build a five-day run, break it, then a shorter run.
	for d := 2; d <= 5; d++ {
		_, err := s.RecordActivity(date(2025, 1, d))
		assert.NoError(t, err)
	}
	assert.Equal(t, 5, s.LongestStreak)

	s.RecordActivity(date(2025, 1, 20))
	s.RecordActivity(date(2025, 1, 21))

	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)
	assert.GreaterOrEqual(t, s.LongestStreak, s.CurrentStreak)
}

func TestTransition_String(t *testing.T) {
	assert.Equal(t, "started", TransitionStarted.String())
	assert.Equal(t, "same_day", TransitionSameDay.String())
	assert.Equal(t, "extended", TransitionExtended.String())
	assert.Equal(t, "reset", TransitionReset.String())
}
