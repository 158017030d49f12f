// Package command contains write operations (CQRS - Commands).
// Each handler runs its read-modify-write work inside one transaction so
// a failure partway through leaves no partial state.
package command

import (
	"context"

	"github.com/google/uuid"
)

// TxRunner executes fn inside a storage transaction. The transaction is
// carried on the context; repositories participate automatically. fn may
// be retried on serialization conflicts, so it must be side-effect free
// outside the transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// StatsInvalidator drops any cached user-stats entry after a write.
// Implementations must tolerate being called for users without a cache
// entry.
type StatsInvalidator interface {
	InvalidateUserStats(ctx context.Context, userID uuid.UUID) error
}
