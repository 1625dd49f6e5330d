package db

import (
	"database/sql"
)

// Migrate creates the runs and entries tables if they do not exist, and enables
// foreign keys. Idempotent; safe to call on every startup.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pattern TEXT NOT NULL,
		base_dir TEXT NOT NULL DEFAULT '',
		strict_text INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		file_count INTEGER NOT NULL DEFAULT 0,
		byte_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		return err
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC)"); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		digest TEXT,
		error_kind TEXT,
		error TEXT,
		hashed_at TEXT NOT NULL,
		UNIQUE(run_id, path)
	)`); err != nil {
		return err
	}
	// Duplicate queries group by digest within a run.
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_entries_run_digest ON entries(run_id, digest) WHERE digest IS NOT NULL"); err != nil {
		return err
	}
	return nil
}
