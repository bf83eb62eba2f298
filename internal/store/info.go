// info.go implements read-only aggregate queries for operational visibility.
//
// Separated to collect "read-only, aggregate" operations distinct from the
// destructive maintenance statements. These queries power the info command
// and auto-maintain threshold decisions without modifying data.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Counts returns the row count of each maintained table.
func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 2)
	for _, table := range []string{"measurements", "sessions"} {
		var n int64
		// Table names come from the fixed list above, never from input.
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
		if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Bounds returns the earliest and latest measurement timestamps.
// Returns ErrEmptyTable when there are no measurements at all.
func (s *SQLiteStore) Bounds(ctx context.Context) (earliest, latest int64, err error) {
	var minTS, maxTS sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT MIN(recorded_at), MAX(recorded_at) FROM measurements`,
	).Scan(&minTS, &maxTS)
	if err != nil {
		return 0, 0, fmt.Errorf("measurement bounds: %w", err)
	}
	if !minTS.Valid {
		return 0, 0, ErrEmptyTable
	}
	return minTS.Int64, maxTS.Int64, nil
}

// DailyHistogram returns per-day measurement counts for the last `days` days,
// most recent day first. Days with no measurements are omitted.
func (s *SQLiteStore) DailyHistogram(ctx context.Context, days int) ([]DayCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(recorded_at, 'unixepoch') AS day, COUNT(*)
		FROM measurements
		WHERE recorded_at >= strftime('%s', 'now', ?)
		GROUP BY day
		ORDER BY day DESC`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return nil, fmt.Errorf("daily histogram: %w", err)
	}
	defer rows.Close()

	var hist []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		hist = append(hist, dc)
	}
	return hist, rows.Err()
}

// MaxID returns the highest measurement id, or 0 for an empty table.
func (s *SQLiteStore) MaxID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM measurements`).Scan(&id); err != nil {
		return 0, fmt.Errorf("max measurement id: %w", err)
	}
	return id.Int64, nil
}
