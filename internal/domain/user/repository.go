package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists users.
//
// Implementations return shared.ErrNotFound when a lookup misses and
// shared.ErrConflict when a unique constraint (provider id or email)
// would be violated.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error

	// Delete removes the user. The storage layer cascades the removal to
	// progress, streaks, conversations and achievements, and clears the
	// user reference on analytics questions.
	Delete(ctx context.Context, id uuid.UUID) error
}
