package achievement

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists achievement grants.
type Repository interface {
	// Grant inserts the achievement if no row exists for the same
	// (user, type, level earned). It reports whether a row was inserted.
	// The insert must be atomic against the uniqueness constraint; a
	// separate existence check would race under concurrent evaluation.
	Grant(ctx context.Context, a *Achievement) (bool, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Achievement, error)
}
