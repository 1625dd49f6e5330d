package db

import (
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// busyTimeoutMS is how long SQLite waits (ms) before returning SQLITE_BUSY when locked.
// Applied per-connection via DSN so all pool connections get it.
const busyTimeoutMS = 30000

// readOnlyBusyTimeoutMS is used for the read-only pool behind the catalog API.
// In WAL mode readers don't block on writers, so keep it short.
const readOnlyBusyTimeoutMS = 5000

// Open opens a SQLite database at path and enables WAL mode. Every pooled
// connection enforces foreign keys. The caller must
// call Close() when done. For an in-memory DB use ":memory:"; the shared-cache
// URI is used so all pool connections see the same database.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared&_busy_timeout=" + strconv.Itoa(busyTimeoutMS) + "&_pragma=foreign_keys(1)"
	} else {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn = path + sep + "_busy_timeout=" + strconv.Itoa(busyTimeoutMS) + "&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenReadOnly opens a read-only SQLite connection to the same database file,
// so API reads stay responsive while an index run is recording.
// Returns (nil, nil) for ":memory:".
func OpenReadOnly(path string) (*sql.DB, error) {
	if path == ":memory:" {
		return nil, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	uri := "file:" + filepath.ToSlash(abs) + "?mode=ro&_busy_timeout=" + strconv.Itoa(readOnlyBusyTimeoutMS)
	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
