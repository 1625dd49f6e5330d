package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Dialect selects placeholder style and migration for a Store.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

const writeRetryAttempts = 8
const writeRetryBackoff = 100 * time.Millisecond

// Store is the run catalog. Queries are written with '?' placeholders and
// rebound for PostgreSQL.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// NewStore wraps an open, migrated database.
func NewStore(database *sql.DB, dialect Dialect) *Store {
	return &Store{db: database, dialect: dialect}
}

// OpenStore opens the catalog: PostgreSQL when databaseURL is set, otherwise
// SQLite at dataDir/indexer.db (dataDir is created if needed). The schema is
// migrated before returning.
func OpenStore(dataDir, databaseURL string) (*Store, error) {
	if databaseURL != "" {
		database, err := OpenPostgres(databaseURL)
		if err != nil {
			return nil, err
		}
		if err := MigratePostgres(database); err != nil {
			_ = database.Close()
			return nil, err
		}
		return NewStore(database, Postgres), nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	database, err := Open(SQLitePath(dataDir))
	if err != nil {
		return nil, err
	}
	if err := Migrate(database); err != nil {
		_ = database.Close()
		return nil, err
	}
	return NewStore(database, SQLite), nil
}

// SQLitePath returns the catalog file inside dataDir.
func SQLitePath(dataDir string) string {
	return filepath.Join(dataDir, "indexer.db")
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind turns '?' placeholders into $1..$n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.dialect != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q string, args ...any) error {
	return RetryOnBusy(ctx, writeRetryAttempts, writeRetryBackoff, func() error {
		_, err := s.db.ExecContext(ctx, s.rebind(q), args...)
		return err
	})
}
