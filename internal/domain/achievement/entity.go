// Package achievement defines earned badges and the configurable rule
// table that decides when they unlock. A grant is idempotent per
// (user, type, level earned); re-evaluating after every progress or
// streak update is safe.
package achievement

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is one earned badge.
type Achievement struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        string
	LevelEarned int
	EarnedAt    time.Time
}

// New creates an achievement grant record.
func New(userID uuid.UUID, achievementType string, levelEarned int, now time.Time) *Achievement {
	return &Achievement{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        achievementType,
		LevelEarned: levelEarned,
		EarnedAt:    now,
	}
}
