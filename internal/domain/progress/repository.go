package progress

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists progress rows, one per user.
//
// GetForUpdate must be called inside a transaction; it locks the row so
// concurrent completions for the same user serialize instead of losing
// updates to the completed-lesson set.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Progress, error)
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*Progress, error)

	// Create inserts the row. A concurrent insert for the same user
	// surfaces as shared.ErrAlreadyExists.
	Create(ctx context.Context, p *Progress) error

	Save(ctx context.Context, p *Progress) error
}
