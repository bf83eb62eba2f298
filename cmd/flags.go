/*
Copyright © 2026 Liam Murray (lmurray-au) <liam@lmurray-au.dev>
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Separated from root.go to isolate flag definitions from command logic.
// Commands read flag values through the accessor functions rather than
// touching the variables directly, and tests replace the output writer
// via SetOut to capture command output.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	db      string
	cfgFile string
)

// out is the output writer for commands. Defaults to os.Stdout.
// Tests can replace this to capture output.
var out io.Writer = os.Stdout

// Out returns the output writer.
func Out() io.Writer { return out }

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// DB returns the resolved database path.
// Priority: --db flag > DBMAINT_DB env var > empty.
func DB() string {
	if db != "" {
		return db
	}
	return os.Getenv("DBMAINT_DB")
}

// ConfigFile returns the explicit config file path if set.
// Priority: --config flag > DBMAINT_CONFIG env var > empty (use discovery).
func ConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return os.Getenv("DBMAINT_CONFIG")
}

// printResult writes v as indented JSON to the output writer. All commands
// report through this so output stays machine-parseable.
func printResult(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// finish prints the result and maps an in-result error to a non-zero exit.
// The result already carries the error text, so cobra's own error printing
// is silenced to avoid reporting it twice.
func finish(cmd *cobra.Command, result any, errStr string) error {
	if err := printResult(result); err != nil {
		return err
	}
	if errStr != "" {
		cmd.SilenceErrors = true
		return fmt.Errorf("%s", errStr)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&db, "db", "", "Path to the measurement database (or set DBMAINT_DB)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (skip discovery, use explicit path)")
}
