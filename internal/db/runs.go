package db

import (
	"context"
	"database/sql"
	"time"
)

// Run is one recorded index run (metadata only; per-file results are in entries).
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	Pattern     string     `json:"pattern" yaml:"pattern"`
	BaseDir     string     `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
	StrictText  bool       `json:"strict_text" yaml:"strict_text"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	FileCount   int64      `json:"file_count" yaml:"file_count"`
	ByteCount   int64      `json:"byte_count" yaml:"byte_count"`
	ErrorCount  int64      `json:"error_count" yaml:"error_count"`
}

const runColumns = "id, pattern, base_dir, strict_text, started_at, completed_at, file_count, byte_count, error_count"

// CreateRun inserts a run with completed_at left null until CompleteRun.
func (s *Store) CreateRun(ctx context.Context, r *Run) error {
	strict := 0
	if r.StrictText {
		strict = 1
	}
	return s.exec(ctx,
		"INSERT INTO runs (id, pattern, base_dir, strict_text, started_at) VALUES (?, ?, ?, ?, ?)",
		r.ID, r.Pattern, r.BaseDir, strict, formatTime(r.StartedAt))
}

// CompleteRun sets completed_at and the final counters for the run.
func (s *Store) CompleteRun(ctx context.Context, id string, completedAt time.Time, fileCount, byteCount, errorCount int64) error {
	return s.exec(ctx,
		"UPDATE runs SET completed_at = ?, file_count = ?, byte_count = ?, error_count = ? WHERE id = ?",
		formatTime(completedAt), fileCount, byteCount, errorCount, id)
}

// GetRun returns the run with the given id, or sql.ErrNoRows if not found.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+runColumns+" FROM runs WHERE id = ?"), id)
	return scanRun(row)
}

// ListRuns returns runs newest first. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var strict int64
	var started, completed textTime
	var baseDir sql.NullString
	if err := row.Scan(&r.ID, &r.Pattern, &baseDir, &strict, &started, &completed, &r.FileCount, &r.ByteCount, &r.ErrorCount); err != nil {
		return nil, err
	}
	r.BaseDir = baseDir.String
	r.StrictText = strict != 0
	r.StartedAt = started.Time
	r.CompletedAt = completed.Ptr()
	return &r, nil
}
