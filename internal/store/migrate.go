package store

import "context"

// Migrate creates the schema. Statements are portable between SQLite and
// Postgres: ids are TEXT, booleans INTEGER 0/1, instants BIGINT unix millis.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			timezone TEXT NOT NULL,
			daily_focus_text TEXT,
			daily_focus_updated_at_unixms BIGINT,
			created_at_unixms BIGINT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token_hash TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at_unixms BIGINT NOT NULL,
			expires_at_unixms BIGINT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			area TEXT,
			due_date TEXT,
			completed_at_unixms BIGINT,
			is_deleted INTEGER NOT NULL,
			deleted_at_unixms BIGINT,
			created_at_unixms BIGINT NOT NULL,
			updated_at_unixms BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, is_deleted);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			frequency TEXT NOT NULL,
			is_active INTEGER NOT NULL,
			created_at_unixms BIGINT NOT NULL,
			updated_at_unixms BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id, is_active);`,
		`CREATE TABLE IF NOT EXISTS habit_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			habit_id TEXT NOT NULL,
			log_date TEXT NOT NULL,
			created_at_unixms BIGINT NOT NULL,
			UNIQUE (habit_id, log_date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_habit_logs_user_date ON habit_logs(user_id, log_date);`,
		`CREATE TABLE IF NOT EXISTS captures (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			linked_task_id TEXT,
			archived_at_unixms BIGINT,
			processed_at_unixms BIGINT,
			created_at_unixms BIGINT NOT NULL,
			updated_at_unixms BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_captures_user_status ON captures(user_id, status);`,
		`CREATE TABLE IF NOT EXISTS mood_checkins (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			checkin_date TEXT NOT NULL,
			mood TEXT NOT NULL,
			note TEXT,
			energy_level INTEGER,
			stress_level INTEGER,
			created_at_unixms BIGINT NOT NULL,
			updated_at_unixms BIGINT NOT NULL,
			UNIQUE (user_id, checkin_date)
		);`,
	}
	for _, s := range stmts {
		if _, err := d.sql.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
