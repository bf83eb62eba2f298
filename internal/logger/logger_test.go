package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalid(t *testing.T) {
	_, err := New(Config{Level: "loud", Format: "text", Output: "stdout"})
	assert.Error(t, err)

	_, err = New(Config{Level: "info", Format: "xml", Output: "stdout"})
	assert.Error(t, err)
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dbmaint.log")
	log, err := New(Config{Level: "info", Format: "text", Output: path})
	require.NoError(t, err)

	log.Info("maintenance started", Field{Key: "db", Value: "test.db"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "maintenance started")
	assert.Contains(t, string(data), "db=test.db")
}

func TestWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, "warn")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	log.Error("failed", errors.New("disk full"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "disk full")
}

func TestDiscard(t *testing.T) {
	// Must not panic; output goes nowhere.
	Discard().Info("dropped")
}
