package db

import (
	"context"
	"database/sql"
	"time"
)

// Entry is one file's result within a run: a digest, or the error that
// prevented hashing it.
type Entry struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size" yaml:"size"`
	Digest    string    `json:"digest,omitempty" yaml:"digest,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	HashedAt  time.Time `json:"hashed_at" yaml:"hashed_at"`
}

// InsertEntry records a file result. Recording the same path twice in a run
// replaces the earlier row.
func (s *Store) InsertEntry(ctx context.Context, e *Entry) error {
	return s.exec(ctx,
		`INSERT INTO entries (run_id, path, size, digest, error_kind, error, hashed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, path) DO UPDATE SET size = excluded.size, digest = excluded.digest,
		   error_kind = excluded.error_kind, error = excluded.error, hashed_at = excluded.hashed_at`,
		e.RunID, e.Path, e.Size, nullString(e.Digest), nullString(e.ErrorKind), nullString(e.Error), formatTime(e.HashedAt))
}

// EntriesByRun returns the run's entries ordered by path.
func (s *Store) EntriesByRun(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT run_id, path, size, digest, error_kind, error, hashed_at
		 FROM entries WHERE run_id = ? ORDER BY path`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var digest, kind, msg sql.NullString
		var hashedAt textTime
		if err := rows.Scan(&e.RunID, &e.Path, &e.Size, &digest, &kind, &msg, &hashedAt); err != nil {
			return nil, err
		}
		e.Digest, e.ErrorKind, e.Error = digest.String, kind.String, msg.String
		e.HashedAt = hashedAt.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
