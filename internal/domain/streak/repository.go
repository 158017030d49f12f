package streak

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists streak rows, one per user.
//
// GetForUpdate must run inside a transaction; the row lock serializes
// concurrent activity events for the same user.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Streak, error)
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*Streak, error)

	// Create inserts the row. A concurrent insert for the same user
	// surfaces as shared.ErrAlreadyExists.
	Create(ctx context.Context, s *Streak) error

	Save(ctx context.Context, s *Streak) error
}
