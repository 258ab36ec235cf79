package store

import (
	"context"
	"fmt"
)

// migration is one forward-only schema step, tracked in the migrations
// table by strictly increasing version.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
		CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			color TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			archived INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			app_name TEXT NOT NULL,
			window_title TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL,
			category TEXT NOT NULL,
			is_productive INTEGER NOT NULL,
			project_id INTEGER,
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_activities_start ON activities(start_time);
		CREATE INDEX IF NOT EXISTS idx_activities_project ON activities(project_id);

		CREATE TABLE IF NOT EXISTS pomodoro_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_time DATETIME NOT NULL,
			end_time DATETIME,
			duration_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			break_kind TEXT NOT NULL DEFAULT '',
			notes TEXT,
			tags TEXT,
			project_id INTEGER,
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_start ON pomodoro_sessions(start_time);
		CREATE INDEX IF NOT EXISTS idx_sessions_status ON pomodoro_sessions(status);

		CREATE TABLE IF NOT EXISTS rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			app_pattern TEXT NOT NULL DEFAULT '',
			title_pattern TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			is_productive INTEGER NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_rules_priority ON rules(priority DESC, id DESC);

		CREATE TABLE IF NOT EXISTS plugin_records (
			id TEXT PRIMARY KEY,
			enabled INTEGER NOT NULL DEFAULT 0,
			config TEXT NOT NULL DEFAULT '{}'
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			metadata TEXT NOT NULL DEFAULT '{}'
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_timestamp ON notifications(timestamp);

		CREATE TABLE IF NOT EXISTS daily_summaries (
			date TEXT PRIMARY KEY,
			work_sessions INTEGER NOT NULL DEFAULT 0,
			breaks_taken INTEGER NOT NULL DEFAULT 0,
			total_work_ms INTEGER NOT NULL DEFAULT 0,
			total_break_ms INTEGER NOT NULL DEFAULT 0,
			activities_tracked INTEGER NOT NULL DEFAULT 0,
			productive_ms INTEGER NOT NULL DEFAULT 0
		);
		`,
	},
}

// Migrate applies every migration not yet recorded in the migrations table,
// in version order, and errors with MigrationDrift if an applied version's
// name no longer matches what this binary expects.
func (s *sqliteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return apperrWrapIO("failed to create migrations table", err)
	}

	applied := make(map[int]string)
	rows, err := s.db.QueryContext(ctx, `SELECT version, name FROM migrations`)
	if err != nil {
		return apperrWrapIO("failed to read migrations table", err)
	}
	for rows.Next() {
		var v int
		var name string
		if err := rows.Scan(&v, &name); err != nil {
			rows.Close()
			return apperrWrapIO("failed to scan migration row", err)
		}
		applied[v] = name
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperrWrapIO("failed to iterate migrations", err)
	}

	for _, m := range migrations {
		if name, ok := applied[m.version]; ok {
			if name != m.name {
				return migrationDrift(m.version, name, m.name)
			}
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return apperrWrapIO("failed to begin migration transaction", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return apperrWrapIO(fmt.Sprintf("failed to apply migration %d (%s)", m.version, m.name), err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			tx.Rollback()
			return apperrWrapIO("failed to record migration", err)
		}
		if err := tx.Commit(); err != nil {
			return apperrWrapIO("failed to commit migration", err)
		}
	}

	return nil
}
