// optimize.go implements space reclamation and statistics maintenance.
//
// Separated because these are whole-database operations with different usage
// patterns than row-level queries. VACUUM in particular rewrites the entire
// file and cannot run inside a transaction, so none of these use Tx.

package store

import (
	"context"
	"fmt"
)

// Reindex rebuilds every index in the database. Useful after bulk deletes,
// which leave index pages fragmented.
func (s *SQLiteStore) Reindex(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `REINDEX`); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	return nil
}

// Analyze refreshes the query planner statistics for all tables.
func (s *SQLiteStore) Analyze(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `ANALYZE`); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}

// Vacuum rewrites the database file, reclaiming space freed by deleted rows.
// This is the only operation that actually shrinks the file on disk.
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// Checkpoint writes all WAL data back to the main database file and truncates
// the WAL. Without this, FileSize understates the real on-disk footprint
// because pending pages still live in the -wal file.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}
