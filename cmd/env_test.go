// env_test.go provides the in-process harness for command tests: each test
// builds a seeded database in a temp directory, runs the root command with
// SetArgs, and decodes the captured JSON output.

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmurray-au/dbmaint/internal/store"
)

// runCommand executes the root command with args and returns its output.
// Flags and environment are reset so tests don't leak state into each other.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Hermetic environment: no global config, no ambient database path.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DBMAINT_DB", "")
	t.Setenv("DBMAINT_CONFIG", "")

	resetFlags()
	buf := captureOutput(t)

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// captureOutput redirects command output into a buffer for the rest of the
// test and restores stdout afterwards.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOut(&buf)
	t.Cleanup(func() {
		SetOut(os.Stdout)
		resetFlags()
	})
	return &buf
}

// resetFlags returns all package-level flag state to defaults. Needed
// because cobra only overwrites a bound variable when its flag appears.
func resetFlags() {
	db, cfgFile = "", ""
	cleanupDays, cleanupOlderThan, cleanupDryRun = 0, "", false
	archiveDays, archiveOlderThan, archiveNoCompress = 0, "", false
	backupName = ""
}

// decodeResult unmarshals the command's JSON output into v.
func decodeResult(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}

// newTestDB creates an initialised database seeded with n measurements for
// one session and returns its path. Row i is recorded i hours 30 minutes
// before now, so no row ever sits exactly on a whole-hour cutoff.
func newTestDB(t *testing.T, n int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "measurements.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Init())

	base := time.Now()
	_, err = st.DB().Exec(
		`INSERT INTO sessions (session_id, started_at, label) VALUES (?, ?, ?)`,
		"sess-1", base.Unix(), "test run")
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		ts := base.Add(-time.Duration(i)*time.Hour - 30*time.Minute).Unix()
		_, err := st.DB().Exec(
			`INSERT INTO measurements (session_id, recorded_at, channel, value) VALUES (?, ?, ?, ?)`,
			"sess-1", ts, "download", float64(i))
		require.NoError(t, err)
	}
	return path
}

// writeConfig writes a config file into a temp directory and returns its path.
func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}
