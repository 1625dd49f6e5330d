package db

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres opens a PostgreSQL database using the given URL (e.g. from DATABASE_URL).
// Caller must call Close() when done. MigratePostgres should be called after open.
func OpenPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	return db, nil
}

// MigratePostgres creates the runs and entries tables and indexes if they do not exist.
// Timestamps are stored as RFC3339 text, the same as in SQLite, so one set of
// queries serves both. Idempotent; safe to call on every startup.
func MigratePostgres(db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			pattern TEXT NOT NULL,
			base_dir TEXT NOT NULL DEFAULT '',
			strict_text INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			completed_at TEXT,
			file_count BIGINT NOT NULL DEFAULT 0,
			byte_count BIGINT NOT NULL DEFAULT 0,
			error_count BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			size BIGINT NOT NULL,
			digest TEXT,
			error_kind TEXT,
			error TEXT,
			hashed_at TEXT NOT NULL,
			UNIQUE(run_id, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_run_digest ON entries(run_id, digest) WHERE digest IS NOT NULL`,
	}
	for _, q := range ddl {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
