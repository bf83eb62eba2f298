// cleanup.go implements permanent deletion of aged measurement data.
//
// Separated because deletion is destructive and irreversible, with different
// semantics from the read-only info queries. Every mutation here runs inside
// a transaction so a failure rolls back rather than leaving partial deletes.
//
// Design: DeleteOlderThan works in id batches to keep individual transactions
// short. A single DELETE spanning millions of rows holds the write lock for
// the whole statement; batching lets the collector interleave its writes.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CountOlderThan returns the number of measurements strictly older than the
// cutoff timestamp. Used by dry-run cleanup and archive previews.
func (s *SQLiteStore) CountOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM measurements WHERE recorded_at < ?`, cutoff,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count older than %d: %w", cutoff, err)
	}
	return n, nil
}

// DeleteOlderThan removes measurements strictly older than the cutoff
// timestamp. Rows at or after the cutoff are never touched. When batch > 0,
// deletion proceeds in batches of that size, each in its own transaction.
// Returns the total number of rows deleted.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff int64, batch int) (int64, error) {
	if batch <= 0 {
		var deleted int64
		err := s.Tx(ctx, func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx,
				`DELETE FROM measurements WHERE recorded_at < ?`, cutoff)
			if err != nil {
				return fmt.Errorf("delete older than %d: %w", cutoff, err)
			}
			deleted, _ = res.RowsAffected()
			return nil
		})
		return deleted, err
	}

	var total int64
	for {
		var deleted int64
		err := s.Tx(ctx, func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM measurements WHERE id IN (
					SELECT id FROM measurements WHERE recorded_at < ? LIMIT ?
				)`, cutoff, batch)
			if err != nil {
				return fmt.Errorf("delete batch older than %d: %w", cutoff, err)
			}
			deleted, _ = res.RowsAffected()
			return nil
		})
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted < int64(batch) {
			return total, nil
		}
	}
}

// DeleteOrphanSessions removes sessions that no longer have any measurements.
// Referential integrity is advisory, so orphans accumulate after cleanup
// until this sweep removes them.
func (s *SQLiteStore) DeleteOrphanSessions(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM sessions WHERE session_id NOT IN (
				SELECT DISTINCT session_id FROM measurements
			)`)
		if err != nil {
			return fmt.Errorf("delete orphan sessions: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

// KeepNewest deletes every measurement except the newest n by id. The rows
// kept are exactly those with id at or above the n-th-from-last id, so the
// maximum retained id always equals the prior maximum id. Returns the number
// of rows deleted (0 when the table already holds n rows or fewer).
func (s *SQLiteStore) KeepNewest(ctx context.Context, n int) (int64, error) {
	var deleted int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var threshold sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM measurements ORDER BY id DESC LIMIT 1 OFFSET ?`,
			n-1,
		).Scan(&threshold)
		if err == sql.ErrNoRows {
			// Fewer than n rows in total; nothing to trim.
			return nil
		}
		if err != nil {
			return fmt.Errorf("find keep threshold: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM measurements WHERE id < ?`, threshold.Int64)
		if err != nil {
			return fmt.Errorf("keep newest %d: %w", n, err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

// ResetAll unconditionally deletes every measurement and session and resets
// the measurement autoincrement counter. Callers are responsible for
// confirming with the operator first; this cannot be undone.
func (s *SQLiteStore) ResetAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM measurements`)
		if err != nil {
			return fmt.Errorf("reset measurements: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM sessions`)
		if err != nil {
			return fmt.Errorf("reset sessions: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}

		// Restart id numbering from 1 for the next collector run. The
		// sqlite_sequence row only exists once an AUTOINCREMENT insert
		// happened, so affecting zero rows here is fine.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sqlite_sequence WHERE name = 'measurements'`); err != nil {
			return fmt.Errorf("reset autoincrement: %w", err)
		}
		return nil
	})
	return deleted, err
}
