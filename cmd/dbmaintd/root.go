package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/config"
	"github.com/lmurray-au/dbmaint/internal/logger"
	"github.com/lmurray-au/dbmaint/internal/maint"
)

// logFileName is created next to the maintained database.
const logFileName = "dbmaint.log"

var (
	dbPath   string
	cfgFile  string
	logLevel string
	force    bool
)

var rootCmd = &cobra.Command{
	Use:   "dbmaintd",
	Short: "Scheduled maintenance daemon for SQLite measurement databases",
	Long: `Run the dbmaint maintenance actions unattended: a daily auto-maintain pass,
an hourly emergency size check, and (in development mode) a six-hourly pass.
Also offers an operator surface for status, emergency cleanup, and a single
on-demand maintenance run.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// newService builds the maintenance service with a logger that writes to
// dbmaint.log next to the database and mirrors to stdout, so both a tailing
// operator and the service journal see the same lines.
func newService() (*maint.Service, *logger.Logger, error) {
	path := resolveDB()
	if path == "" {
		return nil, nil, fmt.Errorf("no database configured (use --db or set DBMAINT_DB)")
	}

	cfg, err := loadConfig()
	if err != nil {
		if cfgFile != "" || os.Getenv("DBMAINT_CONFIG") != "" {
			return nil, nil, err
		}
		fmt.Fprintf(os.Stderr, "warning: config unavailable, using defaults: %v\n", err)
		cfg = config.Default()
	}

	log, err := logger.New(logger.Config{
		Level:  logLevel,
		Format: "text",
		Output: filepath.Join(filepath.Dir(path), logFileName),
		Mirror: true,
	})
	if err != nil {
		return nil, nil, err
	}

	audit.SetDatabase(path)
	return maint.New(path, cfg, log), log, nil
}

func resolveDB() string {
	if dbPath != "" {
		return dbPath
	}
	return os.Getenv("DBMAINT_DB")
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("DBMAINT_CONFIG")
	}
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the measurement database (or set DBMAINT_DB)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (skip discovery, use explicit path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Skip confirmations")
}
