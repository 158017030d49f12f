// Package user contains the identity anchor of the system. Users are
// synchronized from the external identity provider (Clerk); this service
// never authenticates them itself.
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
)

// User is a learner record mirrored from the identity provider.
// Exactly one User exists per provider id and per email.
type User struct {
	ID        uuid.UUID
	ClerkID   string // external provider id, unique
	Email     string // unique
	Name      string
	CreatedAt time.Time
	LastLogin time.Time
}

// New creates a User from a provider sync event.
func New(clerkID, email, name string, now time.Time) (*User, error) {
	clerkID = strings.TrimSpace(clerkID)
	email = normalizeEmail(email)

	if clerkID == "" {
		return nil, shared.NewDomainError("user", "New", shared.ErrValidation, "provider id is required")
	}
	if !validEmail(email) {
		return nil, shared.NewDomainError("user", "New", shared.ErrValidation, "invalid email")
	}

	return &User{
		ID:        uuid.New(),
		ClerkID:   clerkID,
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		LastLogin: now,
	}, nil
}

// ApplySync updates the profile from a provider sync event and refreshes
// the last-login time. It reports whether email or name actually changed.
func (u *User) ApplySync(email, name string, now time.Time) (bool, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if !validEmail(email) {
		return false, shared.NewDomainError("user", "ApplySync", shared.ErrValidation, "invalid email")
	}

	changed := false
	if u.Email != email {
		u.Email = email
		changed = true
	}
	if name != "" && u.Name != name {
		u.Name = name
		changed = true
	}
	u.LastLogin = now
	return changed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && len(email) <= 255
}
