package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
)

// DeleteUserCommand removes a user and everything owned by them.
// Progress, streaks, conversations and achievements go with the user;
// analytics questions survive with the user reference cleared.
// Callers identify the user by internal id or by provider id; webhook
// deletes only carry the latter.
type DeleteUserCommand struct {
	UserID  uuid.UUID
	ClerkID string
}

// DeleteUserHandler handles provider user.deleted events.
type DeleteUserHandler struct {
	users user.Repository
	tx    TxRunner
	stats StatsInvalidator
	log   *logger.Logger
}

// NewDeleteUserHandler creates the handler. stats may be nil.
func NewDeleteUserHandler(users user.Repository, tx TxRunner, stats StatsInvalidator, log *logger.Logger) *DeleteUserHandler {
	return &DeleteUserHandler{users: users, tx: tx, stats: stats, log: log}
}

// Handle deletes the user; the storage layer cascades.
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if cmd.UserID == uuid.Nil && cmd.ClerkID == "" {
		return shared.NewDomainError("user", "Delete", shared.ErrValidation, "user id or provider id is required")
	}

	userID := cmd.UserID
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if userID == uuid.Nil {
			u, err := h.users.GetByClerkID(ctx, cmd.ClerkID)
			if err != nil {
				return err
			}
			userID = u.ID
		}
		return h.users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	if h.stats != nil {
		if err := h.stats.InvalidateUserStats(ctx, userID); err != nil {
			h.log.Warn("stats cache invalidation failed",
				logger.String("user_id", userID.String()), logger.Err(err))
		}
	}
	h.log.Info("user deleted", logger.String("user_id", userID.String()))
	return nil
}
