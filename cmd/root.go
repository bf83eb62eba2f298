/*
Copyright © 2026 Liam Murray (lmurray-au) <liam@lmurray-au.dev>
*/

// root.go defines the root command and CLI execution entry point.
//
// Design: every maintenance command builds its service through newService,
// which resolves the database path and threshold config once. Commands that
// operate on a database fail fast with a clear message when no path is
// configured; config errors fall back to defaults with a warning so a
// broken config file never blocks maintenance.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/config"
	"github.com/lmurray-au/dbmaint/internal/maint"
)

var rootCmd = &cobra.Command{
	Use:   "dbmaint",
	Short: "Maintenance tool for SQLite measurement databases",
	Long: `Inspect, clean up, archive, optimize, and back up a SQLite measurement
database. Commands report results as JSON; failed steps are reported in the
result rather than aborting the run.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// newService resolves the database path and config into a maintenance
// service. The path must come from --db or DBMAINT_DB; the config comes
// from --config, discovery, or defaults.
func newService() (*maint.Service, error) {
	path := DB()
	if path == "" {
		return nil, fmt.Errorf("no database configured (use --db or set DBMAINT_DB)")
	}

	cfg, err := loadConfig()
	if err != nil {
		// An explicit --config that doesn't load is an error; a broken
		// discovered config only warrants a warning.
		if ConfigFile() != "" {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "warning: config unavailable, using defaults: %v\n", err)
		cfg = config.Default()
	}

	audit.SetDatabase(path)
	return maint.New(path, cfg, nil), nil
}

func loadConfig() (*config.Config, error) {
	if path := ConfigFile(); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, executes the command, and closes the audit store
// before exit. Exit code 1 indicates error.
func Execute() {
	// Initialise audit logger (warn if it fails, but continue)
	if err := audit.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer audit.Close()

	if err := rootCmd.Execute(); err != nil {
		audit.Close()
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
