package db

import (
	"os"
	"path/filepath"
	"testing"
)

// TestSQLiteStore opens a migrated SQLite catalog in a temp dir, closed on cleanup.
func TestSQLiteStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestPostgresStore opens a PostgreSQL catalog from DATABASE_URL, migrates it
// and truncates the tables so each test starts clean. Skips when DATABASE_URL
// is unset. Run with -p 1 to avoid cross-package truncate deadlocks.
func TestPostgresStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	s, err := OpenStore(filepath.Join(t.TempDir(), "unused"), url)
	if err != nil {
		t.Fatalf("open postgres store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if _, err := s.DB().Exec("TRUNCATE TABLE entries, runs RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

// TestStores returns every catalog backend available to the test run.
func TestStores(t *testing.T) map[string]func(*testing.T) *Store {
	t.Helper()
	return map[string]func(*testing.T) *Store{
		"sqlite":   TestSQLiteStore,
		"postgres": TestPostgresStore,
	}
}
