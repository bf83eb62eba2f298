/*
Copyright © 2026 Liam Murray (lmurray-au) <liam@lmurray-au.dev>
*/

// dbmaintd is the unattended counterpart to dbmaint: it runs the same
// maintenance actions on a schedule, logs to a file next to the database,
// and offers a small operator surface (status, emergency cleanup, a single
// on-demand pass).
package main

import (
	"fmt"
	"os"

	"github.com/lmurray-au/dbmaint/internal/audit"
)

func main() {
	if err := audit.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer audit.Close()

	if err := rootCmd.Execute(); err != nil {
		audit.Close()
		os.Exit(1)
	}
}
