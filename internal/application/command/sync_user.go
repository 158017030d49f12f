package command

import (
	"context"
	"strings"
	"time"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
)

// SyncUserCommand carries one identity-provider sync event.
type SyncUserCommand struct {
	ClerkID string
	Email   string
	Name    string
}

// Validate checks the command fields.
func (c SyncUserCommand) Validate() error {
	if strings.TrimSpace(c.ClerkID) == "" {
		return shared.NewDomainError("user", "Sync", shared.ErrValidation, "provider id is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return shared.NewDomainError("user", "Sync", shared.ErrValidation, "email is required")
	}
	return nil
}

// SyncUserHandler upserts a user from provider sync events. Repeated
// events with identical input only refresh the last-login timestamp.
type SyncUserHandler struct {
	users user.Repository
	tx    TxRunner
	stats StatsInvalidator
	log   *logger.Logger
	now   func() time.Time
}

// NewSyncUserHandler creates the handler. stats may be nil when caching
// is disabled.
func NewSyncUserHandler(users user.Repository, tx TxRunner, stats StatsInvalidator, log *logger.Logger) *SyncUserHandler {
	return &SyncUserHandler{
		users: users,
		tx:    tx,
		stats: stats,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle resolves the provider id to a user, creating or updating the
// record. Fails with a conflict error when the email already belongs to
// a different provider identity.
func (h *SyncUserHandler) Handle(ctx context.Context, cmd SyncUserCommand) (*user.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var synced *user.User
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := h.now()

		existing, err := h.users.GetByClerkID(ctx, strings.TrimSpace(cmd.ClerkID))
		switch {
		case err == nil:
			if err := h.ensureEmailFree(ctx, cmd.Email, existing.ID.String()); err != nil {
				return err
			}
			if _, err := existing.ApplySync(cmd.Email, cmd.Name, now); err != nil {
				return err
			}
			if err := h.users.Update(ctx, existing); err != nil {
				return err
			}
			synced = existing
			return nil

		case shared.IsNotFound(err):
			if err := h.ensureEmailFree(ctx, cmd.Email, ""); err != nil {
				return err
			}
			created, err := user.New(cmd.ClerkID, cmd.Email, cmd.Name, now)
			if err != nil {
				return err
			}
			if err := h.users.Create(ctx, created); err != nil {
				return err
			}
			synced = created
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	h.invalidateStats(ctx, synced)
	h.log.Info("user synced",
		logger.String("user_id", synced.ID.String()),
		logger.String("clerk_id", synced.ClerkID),
	)
	return synced, nil
}

// ensureEmailFree rejects the sync when the email is owned by a user
// other than ownerID (empty ownerID means a brand new identity).
func (h *SyncUserHandler) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	byEmail, err := h.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if shared.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if byEmail.ID.String() != ownerID {
		return shared.NewDomainError("user", "Sync", shared.ErrConflict,
			"email already belongs to a different identity")
	}
	return nil
}

func (h *SyncUserHandler) invalidateStats(ctx context.Context, u *user.User) {
	if h.stats == nil {
		return
	}
	if err := h.stats.InvalidateUserStats(ctx, u.ID); err != nil {
		h.log.Warn("stats cache invalidation failed",
			logger.String("user_id", u.ID.String()), logger.Err(err))
	}
}
