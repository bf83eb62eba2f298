// schema.go defines the SQLite database schema and provides schema execution helpers.
//
// Schema files are embedded from the sql/ directory and executed in
// alphabetical order (hence the numeric prefixes like 001_, 002_). This keeps
// each table's schema self-contained and reviewable, and ensures
// deterministic execution order.

package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed sql/*.sql
var schemas embed.FS

var (
	// ErrEmptyTable indicates a query that needs at least one row found none.
	ErrEmptyTable = errors.New("table is empty")
)

// ExecEmbedded executes all .sql files from an embedded filesystem in
// alphabetical order. Each .sql file should use IF NOT EXISTS clauses so the
// schema is idempotent against databases the collector already created.
func ExecEmbedded(db *sql.DB, fsys embed.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read schema directory: %w", err)
	}

	// Sort entries to ensure deterministic order (should already be sorted, but be explicit)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := dir + "/" + entry.Name()
		data, err := fsys.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// execSchema executes the embedded core schema files.
func execSchema(db *sql.DB) error {
	return ExecEmbedded(db, schemas, "sql")
}
