// Package maint implements the maintenance actions for a measurement
// database: info reporting, cleanup, archival, optimisation, backup, and the
// auto-maintain orchestrator that sequences them by size thresholds.
//
// Every action returns a result struct with an `error` field rather than a
// Go error. A maintenance run is a sequence of best-effort steps; one step
// failing must not prevent the report of the others, so callers check the
// field instead of unwinding. The orchestrator relies on this to keep going
// after a failed step.
package maint

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lmurray-au/dbmaint/internal/config"
	"github.com/lmurray-au/dbmaint/internal/logger"
	"github.com/lmurray-au/dbmaint/internal/store"
)

// ArchiveDirName is the subdirectory (next to the database file) that holds
// archive exports and backups.
const ArchiveDirName = "archives"

// EmergencyKeepRows is how many of the newest rows an emergency trim keeps.
const EmergencyKeepRows = 10000

// Service runs maintenance actions against one database file. Each action
// opens its own connection and closes it before returning; nothing is held
// between actions, and each invocation is stateless relative to prior runs.
type Service struct {
	dbPath string
	cfg    *config.Config
	log    *logger.Logger

	// now is replaceable in tests so cutoffs are deterministic.
	now func() time.Time
}

// New creates a maintenance service for the database at dbPath. A nil cfg
// uses defaults; a nil log discards.
func New(dbPath string, cfg *config.Config, log *logger.Logger) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{dbPath: dbPath, cfg: cfg, log: log, now: time.Now}
}

// Config returns the mutable threshold configuration this service uses.
// Callers may adjust fields before running maintenance.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// DBPath returns the path of the maintained database file.
func (s *Service) DBPath() string {
	return s.dbPath
}

// openStore opens the database for one action. The file must already exist;
// maintenance never creates a database the collector hasn't.
func (s *Service) openStore() (*store.SQLiteStore, error) {
	if _, err := os.Stat(s.dbPath); err != nil {
		return nil, fmt.Errorf("database %s: %w", s.dbPath, err)
	}
	return store.Open(s.dbPath)
}

// archiveDir returns (and creates) the archives directory next to the
// database file.
func (s *Service) archiveDir() (string, error) {
	dir := filepath.Join(filepath.Dir(s.dbPath), ArchiveDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}
	return dir, nil
}

// fileSize returns the database file size in bytes without opening it.
func (s *Service) fileSize() (int64, error) {
	fi, err := os.Stat(s.dbPath)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", s.dbPath, err)
	}
	return fi.Size(), nil
}

// cutoff converts an age into the unix timestamp before which rows are
// eligible, relative to the service clock.
func (s *Service) cutoff(age time.Duration) int64 {
	return s.now().Add(-age).Unix()
}

// errString renders err for a result's error field ("" when nil).
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
