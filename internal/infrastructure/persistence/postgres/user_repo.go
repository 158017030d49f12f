package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
)

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = "id, clerk_id, email, name, created_at, last_login"

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, clerk_id, email, name, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Name, u.CreatedAt, u.LastLogin,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("user", "Create", shared.ErrConflict, "provider id or email already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a user by internal id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return r.scanUser(r.conn.querier(ctx).QueryRow(ctx, query, id))
}

// GetByClerkID returns a user by external provider id.
func (r *UserRepository) GetByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE clerk_id = $1", userColumns)
	return r.scanUser(r.conn.querier(ctx).QueryRow(ctx, query, clerkID))
}

// GetByEmail returns a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return r.scanUser(r.conn.querier(ctx).QueryRow(ctx, query, email))
}

// Update updates the mutable user fields.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET email = $1, name = $2, last_login = $3
		WHERE id = $4
	`

	result, err := r.conn.querier(ctx).Exec(ctx, query, u.Email, u.Name, u.LastLogin, u.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("user", "Update", shared.ErrConflict, "email already registered")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.NewDomainError("user", "Update", shared.ErrNotFound, "user not found")
	}
	return nil
}

// Delete removes the user. The schema cascades to progress, streaks,
// conversations and achievements and clears the reference on
// student_questions.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.conn.querier(ctx).Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.NewDomainError("user", "Delete", shared.ErrNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.Name, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewDomainError("user", "Get", shared.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
