// sqlite_ops.go provides SQLite connection management and low-level operations.
//
// Separated to isolate SQLite-specific concerns (pragmas, transactions,
// driver registration) from maintenance logic. This is the only file that
// imports the SQLite driver.
//
// Design: WAL mode with busy timeout lets maintenance run while the external
// collector is still appending rows. The 5-second busy timeout prevents
// "database is locked" errors without waiting forever on stuck connections.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore wraps a connection to the measurement database. Maintenance
// actions open a store, perform their statements, and close it again; no
// connection is held across actions.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens the SQLite database file at `path` and returns a configured
// SQLiteStore. The caller should call Close on the returned store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// WAL mode: allows the collector to keep writing while maintenance reads.
	// Trade-off: creates -wal and -shm files alongside the database.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Busy timeout: how long to wait when another connection holds a lock.
	// Most maintenance statements finish in milliseconds; 5 seconds covers
	// the collector holding a write lock mid-batch.
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Synchronous NORMAL: safe against corruption under WAL, and roughly 10x
	// faster than FULL. Losing the last transaction on OS crash is acceptable
	// for a maintenance tool whose actions can simply be re-run.
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting synchronous mode: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Init creates tables and indexes if they don't exist. The external producer
// normally creates the schema; Init exists for tests and first-run setups.
// Safe to call multiple times.
func (s *SQLiteStore) Init() error {
	return execSchema(s.db)
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// FileSize returns the size in bytes of the database file on disk.
func (s *SQLiteStore) FileSize() (int64, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", s.path, err)
	}
	return fi.Size(), nil
}

// DB exposes the underlying connection for callers that need raw statements.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Tx runs fn inside a transaction, committing on nil and rolling back on
// error. Every multi-statement mutation in this package goes through Tx so a
// failed step never leaves the database half-modified.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
