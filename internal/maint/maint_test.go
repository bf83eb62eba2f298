package maint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmurray-au/dbmaint/internal/config"
	"github.com/lmurray-au/dbmaint/internal/exporter"
	"github.com/lmurray-au/dbmaint/internal/store"
)

// newTestService creates a service over a fresh database seeded with n
// measurements, one per hour counting back from base.
func newTestService(t *testing.T, n int, base time.Time) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "measurements.db")
	seedDB(t, dbPath, n, base)

	svc := New(dbPath, config.Default(), nil)
	svc.now = func() time.Time { return base }
	return svc
}

func seedDB(t *testing.T, dbPath string, n int, base time.Time) {
	t.Helper()

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Init())

	_, err = s.DB().Exec(
		`INSERT INTO sessions (session_id, started_at, label) VALUES ('sess-1', ?, 'run')`,
		base.Unix())
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		ts := base.Add(-time.Duration(i) * time.Hour).Unix()
		_, err := s.DB().Exec(
			`INSERT INTO measurements (session_id, recorded_at, channel, value) VALUES (?, ?, ?, ?)`,
			"sess-1", ts, "download", float64(i))
		require.NoError(t, err)
	}
}

func rowCount(t *testing.T, dbPath string) int64 {
	t.Helper()

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	return counts["measurements"]
}

func TestInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("missing database", func(t *testing.T) {
		svc := New(filepath.Join(t.TempDir(), "absent.db"), nil, nil)
		result := svc.Info(ctx)
		assert.False(t, result.Exists)
		assert.Empty(t, result.Error)
	})

	t.Run("seeded database", func(t *testing.T) {
		base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		svc := newTestService(t, 24, base)

		result := svc.Info(ctx)
		require.Empty(t, result.Error)
		assert.True(t, result.Exists)
		assert.Equal(t, int64(24), result.Measurements)
		assert.Equal(t, int64(1), result.Sessions)
		assert.Positive(t, result.SizeBytes)
		assert.Equal(t, "2026-08-20T12:00:00Z", result.Latest)
		assert.Equal(t, "2026-08-19T13:00:00Z", result.Earliest)
		assert.NotEmpty(t, result.Histogram)
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	base := time.Now()

	t.Run("strict retention cutoff", func(t *testing.T) {
		// 48 hourly rows; retention of 1 day deletes only the rows strictly
		// older than base-24h. The row at exactly the cutoff stays.
		svc := newTestService(t, 48, base)

		result := svc.Cleanup(ctx, CleanupOptions{Days: 1})
		require.Empty(t, result.Error)
		assert.Equal(t, int64(23), result.DeletedRows)
		assert.Equal(t, int64(25), rowCount(t, svc.DBPath()))
	})

	t.Run("dry run changes nothing", func(t *testing.T) {
		svc := newTestService(t, 48, base)
		sizeBefore, err := svc.fileSize()
		require.NoError(t, err)

		result := svc.Cleanup(ctx, CleanupOptions{Days: 1, DryRun: true})
		require.Empty(t, result.Error)
		assert.True(t, result.DryRun)
		assert.Equal(t, int64(23), result.MatchedRows)
		assert.Zero(t, result.DeletedRows)
		assert.Positive(t, result.EstimatedFreedBytes)

		sizeAfter, err := svc.fileSize()
		require.NoError(t, err)
		assert.Equal(t, sizeBefore, sizeAfter)
		assert.Equal(t, int64(48), rowCount(t, svc.DBPath()))
	})

	t.Run("removes orphaned sessions", func(t *testing.T) {
		// All rows older than retention: the session loses every measurement
		// and is swept as an orphan.
		svc := newTestService(t, 10, base.Add(-60*24*time.Hour))
		svc.now = time.Now

		result := svc.Cleanup(ctx, CleanupOptions{Days: 30})
		require.Empty(t, result.Error)
		assert.Equal(t, int64(10), result.DeletedRows)
		assert.Equal(t, int64(1), result.OrphanSessions)
	})

	t.Run("older-than override", func(t *testing.T) {
		svc := newTestService(t, 48, base)

		age := 12 * time.Hour
		result := svc.Cleanup(ctx, CleanupOptions{OlderThan: &age})
		require.Empty(t, result.Error)
		assert.Equal(t, int64(35), result.DeletedRows)
		assert.Equal(t, int64(13), rowCount(t, svc.DBPath()))
	})

	t.Run("missing database captured in result", func(t *testing.T) {
		svc := New(filepath.Join(t.TempDir(), "absent.db"), nil, nil)
		result := svc.Cleanup(ctx, CleanupOptions{})
		assert.NotEmpty(t, result.Error)
	})
}

func TestTrimToNewest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 50, time.Now())

	result := svc.TrimToNewest(ctx, 10)
	require.Empty(t, result.Error)
	assert.Equal(t, int64(40), result.DeletedRows)
	assert.Equal(t, int64(10), rowCount(t, svc.DBPath()))
}

func TestFullReset(t *testing.T) {
	ctx := context.Background()

	t.Run("requires literal yes", func(t *testing.T) {
		svc := newTestService(t, 10, time.Now())

		for _, confirm := range []string{"", "y", "YES", "Yes", "no", "yes "} {
			result := svc.FullReset(ctx, confirm)
			assert.False(t, result.Confirmed, confirm)
			assert.Equal(t, int64(10), rowCount(t, svc.DBPath()), confirm)
		}
	})

	t.Run("confirmed reset empties both tables", func(t *testing.T) {
		svc := newTestService(t, 10, time.Now())

		result := svc.FullReset(ctx, "yes")
		require.Empty(t, result.Error)
		assert.True(t, result.Confirmed)
		assert.Equal(t, int64(11), result.DeletedRows)
		assert.Zero(t, rowCount(t, svc.DBPath()))
	})
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	base := time.Now()

	t.Run("rows older than cutoff, store untouched", func(t *testing.T) {
		svc := newTestService(t, 48, base)

		result := svc.Archive(ctx, ArchiveOptions{Days: 1})
		require.Empty(t, result.Error)
		assert.Equal(t, int64(23), result.ArchivedRows)
		assert.True(t, result.Compressed)
		assert.Contains(t, result.Path, ArchiveDirName)
		assert.Contains(t, result.Path, ".csv.gz")

		// Archiving never deletes.
		assert.Equal(t, int64(48), rowCount(t, svc.DBPath()))

		records, err := exporter.ReadRows(result.Path)
		require.NoError(t, err)
		assert.Len(t, records, 24) // header + 23 rows
	})

	t.Run("uncompressed", func(t *testing.T) {
		svc := newTestService(t, 48, base)
		svc.Config().Compress = false

		result := svc.Archive(ctx, ArchiveOptions{Days: 1})
		require.Empty(t, result.Error)
		assert.False(t, result.Compressed)
		assert.Contains(t, result.Path, ".csv")
		assert.NotContains(t, result.Path, ".gz")

		records, err := exporter.ReadRows(result.Path)
		require.NoError(t, err)
		assert.Len(t, records, 24)
	})
}

func TestOptimize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, 200, time.Now())

	// Delete most rows without reclaiming, so optimize has space to recover.
	st, err := store.Open(svc.DBPath())
	require.NoError(t, err)
	_, err = st.DB().Exec(`DELETE FROM measurements WHERE id <= 150`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	result := svc.Optimize(ctx)
	require.Empty(t, result.Error)
	assert.Positive(t, result.SizeBeforeBytes)
	assert.Positive(t, result.SizeAfterBytes)
	assert.Equal(t, result.SizeBeforeBytes-result.SizeAfterBytes, result.SavedBytes)
	assert.LessOrEqual(t, result.SizeAfterBytes, result.SizeBeforeBytes)
}

func TestBackup(t *testing.T) {
	ctx := context.Background()
	base := time.Now()

	t.Run("default name", func(t *testing.T) {
		svc := newTestService(t, 20, base)

		result := svc.Backup(ctx, "")
		require.Empty(t, result.Error)
		assert.Contains(t, filepath.Base(result.Path), "backup_")
		assert.Contains(t, result.Path, ArchiveDirName)

		original, err := os.ReadFile(svc.DBPath())
		require.NoError(t, err)
		copied, err := os.ReadFile(result.Path)
		require.NoError(t, err)
		assert.Equal(t, original, copied)
		assert.Equal(t, int64(len(copied)), result.SizeBytes)
	})

	t.Run("caller-supplied name", func(t *testing.T) {
		svc := newTestService(t, 5, base)

		result := svc.Backup(ctx, "pre-upgrade.db")
		require.Empty(t, result.Error)
		assert.Equal(t, "pre-upgrade.db", filepath.Base(result.Path))
	})
}
