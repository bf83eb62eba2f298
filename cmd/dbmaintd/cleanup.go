package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmurray-au/dbmaint/internal/maint"
)

var (
	cleanupKeep int
	cleanupFull bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Trim the database to its newest rows, or wipe it entirely",
	Long: `Trim the database down to its newest rows (--keep, default 10000). This is
the same emergency cleanup the scheduler runs when the database grows well
past its size limit.

With --full, delete every measurement and session and restart measurement
ids from 1. A full wipe asks for confirmation; type exactly "yes" to
proceed, or pass --force to skip the prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, log, err := newService()
		if err != nil {
			return err
		}

		if !cleanupFull {
			result := svc.TrimToNewest(cmd.Context(), cleanupKeep)
			if result.Error != "" {
				return fmt.Errorf("%s", result.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kept newest %d rows, deleted %d\n", result.Keep, result.DeletedRows)
			return nil
		}

		confirm := "yes"
		if !force {
			fmt.Fprintf(cmd.OutOrStdout(), "This deletes ALL measurements and sessions in %s.\n", svc.DBPath())
			fmt.Fprint(cmd.OutOrStdout(), `Type "yes" to continue: `)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read confirmation: %w", err)
			}
			confirm = strings.TrimSuffix(line, "\n")
		}

		result := svc.FullReset(cmd.Context(), confirm)
		if result.Error != "" {
			return fmt.Errorf("%s", result.Error)
		}
		if !result.Confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted, nothing deleted")
			return nil
		}
		log.Info("full reset completed")
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d rows, ids restart from 1\n", result.DeletedRows)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupKeep, "keep", maint.EmergencyKeepRows, "Number of newest rows to keep")
	cleanupCmd.Flags().BoolVar(&cleanupFull, "full", false, "Delete everything and restart ids from 1")
	rootCmd.AddCommand(cleanupCmd)
}
