package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION SUPPORT
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator handles database migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if it doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	_, err := m.conn.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

// GetAppliedMigrations returns all applied migrations.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
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

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, isApplied := applied[mig.Version]; isApplied {
			continue
		}

		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}

			insertQuery := fmt.Sprintf(
				"INSERT INTO %s (version, name) VALUES ($1, $2)",
				m.tableName,
			)
			_, err := tx.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_progress", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_catalog", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_sessions", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS progress_records (
	user_id         TEXT NOT NULL,
	exercise_id     TEXT NOT NULL,
	success_count   INTEGER NOT NULL DEFAULT 0 CHECK (success_count >= 0),
	failure_count   INTEGER NOT NULL DEFAULT 0 CHECK (failure_count >= 0),
	last_attempt_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, exercise_id)
);

CREATE TABLE IF NOT EXISTS activity_days (
	user_id TEXT NOT NULL,
	day     DATE NOT NULL,
	PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS awarded_achievements (
	user_id        TEXT NOT NULL,
	achievement_id TEXT NOT NULL,
	awarded_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, achievement_id)
);

CREATE TABLE IF NOT EXISTS feedback_submissions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback_submissions (user_id);
`

const migration001Down = `
DROP TABLE IF EXISTS feedback_submissions;
DROP TABLE IF EXISTS awarded_achievements;
DROP TABLE IF EXISTS activity_days;
DROP TABLE IF EXISTS progress_records;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS exercise_items (
	id           TEXT PRIMARY KEY,
	app_id       TEXT NOT NULL,
	descriptor   TEXT NOT NULL,
	needs_review BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (app_id, descriptor)
);
`

const migration002Down = `
DROP TABLE IF EXISTS exercise_items;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS raw_outcomes (
	id         TEXT PRIMARY KEY,
	app_id     TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	session_id TEXT,
	content    TEXT NOT NULL,
	state      TEXT NOT NULL DEFAULT 'unprocessed' CHECK (state IN ('unprocessed', 'consumed')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_raw_outcomes_pending ON raw_outcomes (user_id) WHERE state = 'unprocessed';

CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	topic      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'abandoned')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_plans_user_active ON plans (user_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	topic      TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	theory     JSONB NOT NULL DEFAULT '[]',
	plan_id    TEXT REFERENCES plans (id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS session_tasks (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL REFERENCES sessions (id),
	user_id     TEXT NOT NULL,
	app_id      TEXT NOT NULL,
	order_index INTEGER NOT NULL,
	content     TEXT NOT NULL,
	state       TEXT NOT NULL DEFAULT 'pending' CHECK (state IN ('pending', 'completed')),
	day         INTEGER NOT NULL DEFAULT 0,
	focus       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_session_tasks_session ON session_tasks (session_id, order_index);
CREATE INDEX IF NOT EXISTS idx_session_tasks_user_pending ON session_tasks (user_id) WHERE state = 'pending';

CREATE TABLE IF NOT EXISTS generation_log (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	request    TEXT NOT NULL,
	response   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const migration003Down = `
DROP TABLE IF EXISTS generation_log;
DROP TABLE IF EXISTS session_tasks;
DROP TABLE IF EXISTS sessions;
DROP TABLE IF EXISTS plans;
DROP TABLE IF EXISTS raw_outcomes;
`
