package postgres

import (
	"context"
	"fmt"
	"time"
)

const migration001Up = `
-- Migration: users and progress
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    clerk_id VARCHAR(255) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    name VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    last_login TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_clerk_id ON users(clerk_id);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS user_progress (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    current_level INTEGER NOT NULL DEFAULT 0,
    current_module INTEGER NOT NULL DEFAULT 0,
    current_lesson INTEGER NOT NULL DEFAULT 1,
    completed_lessons JSONB NOT NULL DEFAULT '[]'::jsonb,
    total_lessons_completed INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_lesson CHECK (current_lesson >= 1),
    CONSTRAINT valid_counts CHECK (total_lessons_completed >= 0)
);

CREATE INDEX IF NOT EXISTS idx_user_progress_user_id ON user_progress(user_id);
`

const migration001Down = `
DROP TABLE IF EXISTS user_progress;
DROP TABLE IF EXISTS users;
`

const migration002Up = `
-- Migration: conversations, analytics questions, achievements, streaks
CREATE TABLE IF NOT EXISTS conversations (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    level INTEGER NOT NULL,
    lesson_number INTEGER NOT NULL,
    messages JSONB NOT NULL,
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_duration CHECK (duration_seconds >= 0)
);

CREATE INDEX IF NOT EXISTS idx_conversations_user_id ON conversations(user_id);
CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at DESC);

CREATE TABLE IF NOT EXISTS student_questions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID REFERENCES users(id) ON DELETE SET NULL,
    timestamp TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    student_level VARCHAR(50) NOT NULL DEFAULT '',
    lesson_number INTEGER NOT NULL DEFAULT 0,
    question TEXT NOT NULL,
    response TEXT NOT NULL,
    module VARCHAR(255) NOT NULL DEFAULT '',
    lesson_name VARCHAR(255) NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_student_questions_user_id ON student_questions(user_id);
CREATE INDEX IF NOT EXISTS idx_student_questions_timestamp ON student_questions(timestamp DESC);

CREATE TABLE IF NOT EXISTS achievements (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    achievement_type VARCHAR(50) NOT NULL,
    level_earned INTEGER NOT NULL DEFAULT 0,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT uq_achievement_per_user UNIQUE (user_id, achievement_type, level_earned)
);

CREATE INDEX IF NOT EXISTS idx_achievements_user_id ON achievements(user_id);

CREATE TABLE IF NOT EXISTS learning_streaks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_activity_date DATE NOT NULL DEFAULT CURRENT_DATE,

    CONSTRAINT valid_streaks CHECK (longest_streak >= current_streak)
);

CREATE INDEX IF NOT EXISTS idx_learning_streaks_user_id ON learning_streaks(user_id);
`

const migration002Down = `
DROP TABLE IF EXISTS learning_streaks;
DROP TABLE IF EXISTS achievements;
DROP TABLE IF EXISTS student_questions;
DROP TABLE IF EXISTS conversations;
`

const migration003Up = `
-- Migration: derived user_stats view.
-- Outer-join semantics: users without related rows get zero counts.
CREATE OR REPLACE VIEW user_stats AS
SELECT
    u.id AS user_id,
    u.email,
    u.name,
    COALESCE(p.current_level, 0) AS current_level,
    COALESCE(p.current_module, 0) AS current_module,
    COALESCE(p.current_lesson, 1) AS current_lesson,
    COALESCE(p.total_lessons_completed, 0) AS total_lessons_completed,
    COALESCE(s.current_streak, 0) AS current_streak,
    COALESCE(s.longest_streak, 0) AS longest_streak,
    s.last_activity_date,
    (SELECT COUNT(*) FROM conversations c WHERE c.user_id = u.id) AS conversation_count,
    (SELECT COUNT(*) FROM student_questions q WHERE q.user_id = u.id) AS question_count,
    (SELECT COUNT(*) FROM achievements a WHERE a.user_id = u.id) AS achievement_count
FROM users u
LEFT JOIN user_progress p ON p.user_id = u.id
LEFT JOIN learning_streaks s ON s.user_id = u.id;
`

const migration003Down = `
DROP VIEW IF EXISTS user_stats;
`

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// GetMigrations returns all migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_users_and_progress", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_activity_tables", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_user_stats_view", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

// Migrator applies embedded migrations transactionally.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		err := m.conn.WithinTx(ctx, func(ctx context.Context) error {
			q := m.conn.querier(ctx)
			if _, err := q.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := q.Exec(ctx, insert, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

// Rollback reverts the most recently applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	var last int
	for v := range applied {
		if v > last {
			last = v
		}
	}
	if last == 0 {
		return nil
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil || target.DownSQL == "" {
		return fmt.Errorf("%w: missing down SQL for migration %d", ErrMigrationFailed, last)
	}

	return m.conn.WithinTx(ctx, func(ctx context.Context) error {
		q := m.conn.querier(ctx)
		if _, err := q.Exec(ctx, target.DownSQL); err != nil {
			return fmt.Errorf("failed to roll back migration %d: %w", target.Version, err)
		}
		del := fmt.Sprintf("DELETE FROM %s WHERE version = $1", m.tableName)
		_, err := q.Exec(ctx, del, target.Version)
		return err
	})
}
