package command

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/conversation"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/streak"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/user"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/retry"
)

// In-memory fakes for command tests. They implement the repository
// interfaces without persistence so the handlers run synchronously.

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

// fakeTx runs the function directly; there is nothing to roll back.
type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// retryingTx mirrors the storage transaction runner: the function is
// re-run while it fails with a retryable error.
type retryingTx struct{}

func (retryingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}, fn)
}

// fakeInvalidator records invalidation calls.
type fakeInvalidator struct {
	calls []uuid.UUID
}

func (f *fakeInvalidator) InvalidateUserStats(_ context.Context, userID uuid.UUID) error {
	f.calls = append(f.calls, userID)
	return nil
}

// ── users ────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	byID map[uuid.UUID]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range r.byID {
		if existing.ClerkID == u.ClerkID || existing.Email == u.Email {
			return shared.NewDomainError("user", "Create", shared.ErrConflict, "user already exists")
		}
	}
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, shared.NewDomainError("user", "Get", shared.ErrNotFound, "user not found")
}

func (r *fakeUserRepo) GetByClerkID(_ context.Context, clerkID string) (*user.User, error) {
	for _, u := range r.byID {
		if u.ClerkID == clerkID {
			return u, nil
		}
	}
	return nil, shared.NewDomainError("user", "Get", shared.ErrNotFound, "user not found")
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.NewDomainError("user", "Get", shared.ErrNotFound, "user not found")
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return shared.NewDomainError("user", "Update", shared.ErrNotFound, "user not found")
	}
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return shared.NewDomainError("user", "Delete", shared.ErrNotFound, "user not found")
	}
	delete(r.byID, id)
	return nil
}

// ── progress ─────────────────────────────────────────────────────────────

type fakeProgressRepo struct {
	byUser map[uuid.UUID]*progress.Progress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{byUser: make(map[uuid.UUID]*progress.Progress)}
}

func (r *fakeProgressRepo) Get(_ context.Context, userID uuid.UUID) (*progress.Progress, error) {
	if p, ok := r.byUser[userID]; ok {
		return p, nil
	}
	return nil, shared.NewDomainError("progress", "Get", shared.ErrNotFound, "progress row not found")
}

func (r *fakeProgressRepo) GetForUpdate(ctx context.Context, userID uuid.UUID) (*progress.Progress, error) {
	return r.Get(ctx, userID)
}

func (r *fakeProgressRepo) Create(_ context.Context, p *progress.Progress) error {
	if _, ok := r.byUser[p.UserID]; ok {
		return shared.NewDomainError("progress", "Create", shared.ErrAlreadyExists, "progress row already exists")
	}
	r.byUser[p.UserID] = p
	return nil
}

func (r *fakeProgressRepo) Save(_ context.Context, p *progress.Progress) error {
	if _, ok := r.byUser[p.UserID]; !ok {
		return shared.NewDomainError("progress", "Save", shared.ErrNotFound, "progress row not found")
	}
	r.byUser[p.UserID] = p
	return nil
}

// ── streaks ──────────────────────────────────────────────────────────────

type fakeStreakRepo struct {
	byUser map[uuid.UUID]*streak.Streak
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{byUser: make(map[uuid.UUID]*streak.Streak)}
}

func (r *fakeStreakRepo) Get(_ context.Context, userID uuid.UUID) (*streak.Streak, error) {
	if s, ok := r.byUser[userID]; ok {
		return s, nil
	}
	return nil, shared.NewDomainError("streak", "Get", shared.ErrNotFound, "streak row not found")
}

func (r *fakeStreakRepo) GetForUpdate(ctx context.Context, userID uuid.UUID) (*streak.Streak, error) {
	return r.Get(ctx, userID)
}

func (r *fakeStreakRepo) Create(_ context.Context, s *streak.Streak) error {
	if _, ok := r.byUser[s.UserID]; ok {
		return shared.NewDomainError("streak", "Create", shared.ErrAlreadyExists, "streak row already exists")
	}
	r.byUser[s.UserID] = s
	return nil
}

func (r *fakeStreakRepo) Save(_ context.Context, s *streak.Streak) error {
	if _, ok := r.byUser[s.UserID]; !ok {
		return shared.NewDomainError("streak", "Save", shared.ErrNotFound, "streak row not found")
	}
	r.byUser[s.UserID] = s
	return nil
}

// ── achievements ─────────────────────────────────────────────────────────

type grantKey struct {
	userID uuid.UUID
	typ    string
	level  int
}

type fakeAchievementRepo struct {
	granted map[grantKey]*achievement.Achievement
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{granted: make(map[grantKey]*achievement.Achievement)}
}

func (r *fakeAchievementRepo) Grant(_ context.Context, a *achievement.Achievement) (bool, error) {
	key := grantKey{userID: a.UserID, typ: a.Type, level: a.LevelEarned}
	if _, ok := r.granted[key]; ok {
		return false, nil
	}
	r.granted[key] = a
	return true, nil
}

func (r *fakeAchievementRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*achievement.Achievement, error) {
	var out []*achievement.Achievement
	for _, a := range r.granted {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ── conversations ────────────────────────────────────────────────────────

type fakeConversationRepo struct {
	conversations []*conversation.Conversation
	questions     []*conversation.StudentQuestion
}

func (r *fakeConversationRepo) AppendConversation(_ context.Context, c *conversation.Conversation) error {
	r.conversations = append(r.conversations, c)
	return nil
}

func (r *fakeConversationRepo) AppendQuestion(_ context.Context, q *conversation.StudentQuestion) error {
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeConversationRepo) ListConversations(_ context.Context, userID uuid.UUID, limit int) ([]*conversation.Conversation, error) {
	var out []*conversation.Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
