// Package config provides reading of dbmaint maintenance thresholds.
// Supports both global (~/.dbmaint/config.yaml) and local (.dbmaint/config.yaml).
// Reading: uses local if it exists, otherwise global, otherwise defaults.
//
// The loaded Config is a plain in-memory value: callers may adjust fields
// before running maintenance, and nothing writes the file back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir is the name of the configuration directory.
const Dir = ".dbmaint"

// Schedule holds scheduler configuration.
type Schedule struct {
	// Enabled gates the polling scheduler entirely. When false, dbmaintd
	// degrades to on-demand mode and says so rather than silently skipping.
	Enabled bool `yaml:"enabled"`
	// DailyAt is the local wall-clock time ("HH:MM") of the daily run.
	DailyAt string `yaml:"daily_at"`
	// Development adds a six-hourly auto-maintain run on top of the daily
	// and hourly jobs. An explicit toggle; there is no environment sniffing.
	Development bool `yaml:"development"`
}

// Config holds the maintenance thresholds. All sizes are in megabytes and
// all ages in days.
type Config struct {
	MaxDBSizeMB       int      `yaml:"max_db_size_mb"`
	RetentionDays     int      `yaml:"retention_days"`
	ArchiveDays       int      `yaml:"archive_days"` // 0 disables archiving
	BatchSize         int      `yaml:"batch_size"`
	VacuumThresholdMB int      `yaml:"vacuum_threshold_mb"`
	AutoBackup        bool     `yaml:"auto_backup"`
	Compress          bool     `yaml:"compress"`
	Schedule          Schedule `yaml:"schedule"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		MaxDBSizeMB:       100,
		RetentionDays:     90,
		ArchiveDays:       30,
		BatchSize:         1000,
		VacuumThresholdMB: 50,
		AutoBackup:        true,
		Compress:          true,
		Schedule: Schedule{
			Enabled:     true,
			DailyAt:     "03:30",
			Development: false,
		},
	}
}

// Load reads configuration, preferring local over global and falling back to
// defaults when neither file exists. A present-but-unparsable file is an
// error; a missing file is not.
func Load() (*Config, error) {
	for _, path := range []string{localPath(), globalPath()} {
		if path == "" {
			continue
		}
		cfg, err := loadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Default(), nil
}

// LoadFile reads configuration from an explicit path, for callers that point
// dbmaint at a database outside the working tree.
func LoadFile(path string) (*Config, error) {
	return loadFile(path)
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Start from defaults so absent keys keep their documented values.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxDBSizeMB < 0 || c.VacuumThresholdMB < 0 {
		return errors.New("size thresholds must not be negative")
	}
	if c.RetentionDays < 0 || c.ArchiveDays < 0 {
		return errors.New("retention and archive ages must not be negative")
	}
	return nil
}

func localPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(wd, Dir, "config.yaml")
}

func globalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, Dir, "config.yaml")
}
