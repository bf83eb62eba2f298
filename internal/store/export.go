// export.go implements streaming reads of aged rows for archival.
//
// Separated from info.go because export iterates full rows rather than
// aggregates. The callback style avoids materialising the whole result set,
// which matters when archiving months of measurements in one pass.

package store

import (
	"context"
	"fmt"
)

// OlderThan streams measurements strictly older than the cutoff timestamp,
// ordered by recorded_at ascending, invoking fn for each row. Iteration
// stops at the first error returned by fn.
func (s *SQLiteStore) OlderThan(ctx context.Context, cutoff int64, fn func(Measurement) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, recorded_at, channel, value
		FROM measurements
		WHERE recorded_at < ?
		ORDER BY recorded_at`, cutoff)
	if err != nil {
		return fmt.Errorf("select older than %d: %w", cutoff, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.ID, &m.SessionID, &m.RecordedAt, &m.Channel, &m.Value); err != nil {
			return fmt.Errorf("scan measurement: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}
