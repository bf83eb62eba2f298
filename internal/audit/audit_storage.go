// audit_storage.go implements SQLite-based persistent audit logging.
//
// Separated from audit.go to isolate database concerns. The main audit.go
// provides the fluent API for building entries, while this file handles
// persistence. Using SQLite enables cross-database queries ("what ran last
// night, everywhere") that plain text logs cannot provide. The target field
// uses a hash of the database path to enable aggregation while preserving
// privacy.
//
// Design: Errors during logging are best-effort. A cleanup run should
// succeed even if we can't record it in the audit log.

package audit

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Logger writes audit log entries to a SQLite database.
type Logger struct {
	db     *sql.DB
	target string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO log (start, end, target, source, action, rows_affected, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.target, e.Source, e.Action, e.Rows,
		success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		// Best-effort logging: don't break the maintenance action, but report
		_, _ = fmt.Fprintf(os.Stderr, "dbmaint: audit log write failed: %v\n", err)
	}
}

func open() (*Logger, error) {
	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Logger{db: db}, nil
}

// dbPathFunc is the function that returns the database path.
// Tests can override this to use a temp directory.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory if home cannot be determined, so
		// logging still works in containers and other odd environments.
		return filepath.Join(".dbmaint", "log", "dbmaint-log.db")
	}
	return filepath.Join(home, ".dbmaint", "log", "dbmaint-log.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the audit log database.
func DBPath() string {
	return dbPath()
}

// hash creates a target identifier from the database path, enabling
// cross-database queries while preserving privacy.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		// Should never happen with nil key, but don't silently ignore
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// migrate creates the log table if it doesn't exist. Safe for concurrent access.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS log (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			start         INTEGER NOT NULL,
			end           INTEGER NOT NULL,
			target        TEXT NOT NULL,
			source        TEXT NOT NULL,
			action        TEXT NOT NULL,
			rows_affected INTEGER NOT NULL DEFAULT 0,
			success       INTEGER NOT NULL,
			error         TEXT,
			detail        TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_log_start ON log(start);
		CREATE INDEX IF NOT EXISTS idx_log_target ON log(target);
		CREATE INDEX IF NOT EXISTS idx_log_source ON log(source);
	`)
	return err
}

// nilIfEmpty returns nil for empty strings, reducing NULL checks in queries.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
