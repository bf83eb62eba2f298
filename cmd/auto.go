package cmd

import (
	"github.com/spf13/cobra"
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run size-gated maintenance in one pass",
	Long: `Check the database size against the configured thresholds and run the
maintenance actions it calls for: archive then cleanup when the size exceeds
max_db_size_mb, optimize when it exceeds vacuum_threshold_mb, and a backup
when auto_backup is set. A failed step is recorded in its task result and
the remaining steps still run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		result := svc.AutoMaintain(cmd.Context())
		return finish(cmd, result, result.Error)
	},
}

func init() {
	rootCmd.AddCommand(autoCmd)
}
