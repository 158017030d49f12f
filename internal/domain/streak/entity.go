// Package streak implements the daily-activity streak state machine.
// The entire behavioral contract is the four-branch transition table in
// RecordActivity; everything else is plumbing.
package streak

import (
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/timeutil"
)

// Transition describes what a recorded activity did to the streak.
type Transition int

const (
	// TransitionStarted - first ever activity, streak begins at 1.
	TransitionStarted Transition = iota
	// TransitionSameDay - activity on the already-recorded date, no change.
	TransitionSameDay
	// TransitionExtended - consecutive day, streak grew by one.
	TransitionExtended
	// TransitionReset - a gap of more than one day, streak restarted at 1.
	TransitionReset
)

// String returns the transition name for logging.
func (t Transition) String() string {
	switch t {
	case TransitionStarted:
		return "started"
	case TransitionSameDay:
		return "same_day"
	case TransitionExtended:
		return "extended"
	case TransitionReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Streak holds a user's current and longest run of active days.
// Invariant: LongestStreak >= CurrentStreak.
type Streak struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate time.Time // UTC calendar date, midnight
}

// New starts a streak from the first qualifying activity.
func New(userID uuid.UUID, activityDate time.Time) *Streak {
	return &Streak{
		ID:               uuid.New(),
		UserID:           userID,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastActivityDate: timeutil.DateOnly(activityDate),
	}
}

// RecordActivity applies one qualifying activity date to the streak:
//
//	same day      -> no change
//	next day      -> current++, longest = max(longest, current)
//	gap (> 1 day) -> current = 1, longest unchanged
//	earlier date  -> ErrInvalidOrder, streak untouched
func (s *Streak) RecordActivity(activityDate time.Time) (Transition, error) {
	date := timeutil.DateOnly(activityDate)

	days := timeutil.DaysBetween(s.LastActivityDate, date)
	switch {
	case days < 0:
		return 0, shared.NewDomainError("streak", "RecordActivity", shared.ErrInvalidOrder,
			"activity dated before last recorded activity")
	case days == 0:
		return TransitionSameDay, nil
	case days == 1:
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		s.LastActivityDate = date
		return TransitionExtended, nil
	default:
		s.CurrentStreak = 1
		s.LastActivityDate = date
		return TransitionReset, nil
	}
}
