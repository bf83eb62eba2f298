package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore creates an initialised store in a temp directory.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "measurements.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(func() { s.Close() })
	return s
}

// seed inserts n measurements for the given session, one per hour counting
// back from base. Row i is recorded at base - i hours.
func seed(t *testing.T, s *SQLiteStore, session string, n int, base time.Time) {
	t.Helper()

	_, err := s.DB().Exec(
		`INSERT OR IGNORE INTO sessions (session_id, started_at, label) VALUES (?, ?, ?)`,
		session, base.Unix(), "test run")
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		ts := base.Add(-time.Duration(i) * time.Hour).Unix()
		_, err := s.DB().Exec(
			`INSERT INTO measurements (session_id, recorded_at, channel, value) VALUES (?, ?, ?, ?)`,
			session, ts, "download", float64(i))
		require.NoError(t, err)
	}
}

func measurementCount(t *testing.T, s *SQLiteStore) int64 {
	t.Helper()
	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	return counts["measurements"]
}

func TestCounts(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "sess-1", 10, time.Now())

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), counts["measurements"])
	assert.Equal(t, int64(1), counts["sessions"])
}

func TestBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s := openTestStore(t)
		_, _, err := s.Bounds(ctx)
		assert.ErrorIs(t, err, ErrEmptyTable)
	})

	t.Run("seeded", func(t *testing.T) {
		s := openTestStore(t)
		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		seed(t, s, "sess-1", 5, base)

		earliest, latest, err := s.Bounds(ctx)
		require.NoError(t, err)
		assert.Equal(t, base.Add(-4*time.Hour).Unix(), earliest)
		assert.Equal(t, base.Unix(), latest)
	})
}

func TestDeleteOlderThan(t *testing.T) {
	ctx := context.Background()

	t.Run("strict cutoff", func(t *testing.T) {
		s := openTestStore(t)
		base := time.Now()
		seed(t, s, "sess-1", 10, base)

		// Cutoff exactly at the 5th row's timestamp: rows strictly older go,
		// the row at the cutoff stays.
		cutoff := base.Add(-4 * time.Hour).Unix()
		deleted, err := s.DeleteOlderThan(ctx, cutoff, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), deleted)
		assert.Equal(t, int64(5), measurementCount(t, s))

		var remaining int64
		err = s.DB().QueryRow(
			`SELECT COUNT(*) FROM measurements WHERE recorded_at < ?`, cutoff,
		).Scan(&remaining)
		require.NoError(t, err)
		assert.Zero(t, remaining)
	})

	t.Run("batched", func(t *testing.T) {
		s := openTestStore(t)
		base := time.Now()
		seed(t, s, "sess-1", 20, base)

		cutoff := base.Add(-9 * time.Hour).Unix()
		deleted, err := s.DeleteOlderThan(ctx, cutoff, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(10), deleted)
		assert.Equal(t, int64(10), measurementCount(t, s))
	})

	t.Run("nothing older", func(t *testing.T) {
		s := openTestStore(t)
		base := time.Now()
		seed(t, s, "sess-1", 5, base)

		deleted, err := s.DeleteOlderThan(ctx, base.Add(-24*time.Hour).Unix(), 0)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Equal(t, int64(5), measurementCount(t, s))
	})
}

func TestCountOlderThan(t *testing.T) {
	s := openTestStore(t)
	base := time.Now()
	seed(t, s, "sess-1", 10, base)

	n, err := s.CountOlderThan(context.Background(), base.Add(-4*time.Hour).Unix())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestKeepNewest(t *testing.T) {
	ctx := context.Background()

	t.Run("trims to n", func(t *testing.T) {
		s := openTestStore(t)
		seed(t, s, "sess-1", 50, time.Now())

		maxBefore, err := s.MaxID(ctx)
		require.NoError(t, err)

		deleted, err := s.KeepNewest(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(40), deleted)
		assert.Equal(t, int64(10), measurementCount(t, s))

		maxAfter, err := s.MaxID(ctx)
		require.NoError(t, err)
		assert.Equal(t, maxBefore, maxAfter)
	})

	t.Run("fewer rows than n", func(t *testing.T) {
		s := openTestStore(t)
		seed(t, s, "sess-1", 5, time.Now())

		deleted, err := s.KeepNewest(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Equal(t, int64(5), measurementCount(t, s))
	})
}

func TestDeleteOrphanSessions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Now()
	seed(t, s, "sess-live", 5, base)
	seed(t, s, "sess-orphan", 5, base)

	// Strand the second session by deleting all its measurements.
	_, err := s.DB().Exec(`DELETE FROM measurements WHERE session_id = 'sess-orphan'`)
	require.NoError(t, err)

	deleted, err := s.DeleteOrphanSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["sessions"])
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seed(t, s, "sess-1", 10, time.Now())

	deleted, err := s.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), deleted) // 10 measurements + 1 session

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts["measurements"])
	assert.Zero(t, counts["sessions"])

	// Autoincrement restarts from 1.
	_, err = s.DB().Exec(
		`INSERT INTO measurements (session_id, recorded_at, channel, value) VALUES ('sess-2', ?, 'ping', 1.0)`,
		time.Now().Unix())
	require.NoError(t, err)
	maxID, err := s.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), maxID)
}

func TestDailyHistogram(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()

	// Two rows today, one row 40 days ago (outside the window).
	seed(t, s, "sess-1", 2, now)
	_, err := s.DB().Exec(
		`INSERT INTO measurements (session_id, recorded_at, channel, value) VALUES ('sess-1', ?, 'ping', 9.9)`,
		now.AddDate(0, 0, -40).Unix())
	require.NoError(t, err)

	hist, err := s.DailyHistogram(context.Background(), 30)
	require.NoError(t, err)
	require.NotEmpty(t, hist)

	var total int64
	for _, dc := range hist {
		total += dc.Count
	}
	assert.Equal(t, int64(2), total)
}

func TestOlderThan(t *testing.T) {
	s := openTestStore(t)
	base := time.Now()
	seed(t, s, "sess-1", 10, base)

	var got []Measurement
	cutoff := base.Add(-4 * time.Hour).Unix()
	err := s.OlderThan(context.Background(), cutoff, func(m Measurement) error {
		got = append(got, m)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 5)

	// Ordered by recorded_at ascending.
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].RecordedAt, got[i].RecordedAt)
	}
	for _, m := range got {
		assert.Less(t, m.RecordedAt, cutoff)
	}
}

func TestOlderThanCallbackError(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "sess-1", 5, time.Now())

	wantErr := fmt.Errorf("stop")
	err := s.OlderThan(context.Background(), time.Now().Unix()+1, func(Measurement) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}
