package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmurray-au/dbmaint/internal/maint"
)

func autoTaskNames(result maint.AutoResult) []string {
	names := make([]string, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		names = append(names, task.Name)
	}
	return names
}

func TestAuto(t *testing.T) {
	path := newTestDB(t, 30)

	// Zero thresholds make every size gate fire regardless of file size.
	cfg := writeConfig(t, `
max_db_size_mb: 0
retention_days: 1
archive_days: 1
vacuum_threshold_mb: 0
auto_backup: true
compress: true
`)

	output, err := runCommand(t, "auto", "--db", path, "--config", cfg)
	require.NoError(t, err)

	var result maint.AutoResult
	decodeResult(t, output, &result)
	assert.Equal(t, []string{"archive", "cleanup", "optimize", "backup"}, autoTaskNames(result))
	assert.Positive(t, result.SizeBeforeBytes)
	assert.Empty(t, result.Error)
}

func TestAutoNothingToDo(t *testing.T) {
	path := newTestDB(t, 5)

	// Unreachable thresholds, backup off: no task should run.
	cfg := writeConfig(t, `
max_db_size_mb: 1048576
vacuum_threshold_mb: 1048576
auto_backup: false
`)

	output, err := runCommand(t, "auto", "--db", path, "--config", cfg)
	require.NoError(t, err)

	var result maint.AutoResult
	decodeResult(t, output, &result)
	assert.Empty(t, result.Tasks)
}

func TestAutoBadConfigFile(t *testing.T) {
	path := newTestDB(t, 1)

	cfg := writeConfig(t, "max_db_size_mb: [not a number]")
	_, err := runCommand(t, "auto", "--db", path, "--config", cfg)
	assert.Error(t, err)
}
