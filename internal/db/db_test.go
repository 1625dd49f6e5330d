package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_enablesWAL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer db.Close()

	var mode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	if err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpen_createsDBFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "created.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	db.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("DB file %q was not created", path)
	}

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("Open() second time: %v", err)
	}
	defer db2.Close()

	var n int
	err = db2.QueryRow("SELECT 1").Scan(&n)
	if err != nil {
		t.Fatalf("Query after reopen: %v", err)
	}
	if n != 1 {
		t.Errorf("SELECT 1 = %d, want 1", n)
	}
}

func TestOpenReadOnly_rejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.db")
	rw, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer rw.Close()
	if err := Migrate(rw); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly() err = %v", err)
	}
	defer ro.Close()

	if _, err := ro.Exec("INSERT INTO runs (id, pattern, started_at) VALUES ('x', '*', '2026-01-01T00:00:00Z')"); err == nil {
		t.Error("insert through read-only connection succeeded, want error")
	}
	var n int
	if err := ro.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		t.Fatalf("read through read-only connection: %v", err)
	}
}

func TestOpenReadOnly_memoryReturnsNil(t *testing.T) {
	ro, err := OpenReadOnly(":memory:")
	if err != nil || ro != nil {
		t.Errorf("OpenReadOnly(:memory:) = %v, %v; want nil, nil", ro, err)
	}
}

func TestClose_preventsUse(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	db.Close()

	err = db.Ping()
	if err == nil {
		t.Error("Ping() after Close() succeeded, want error")
	}
}
