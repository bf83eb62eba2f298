package cmd

import (
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report database size, row counts, and measurement time range",
	Long: `Report the database path, file size, measurement and session counts, the
earliest and latest measurement timestamps, and a per-day histogram of the
last 30 days. A missing database file is reported, not an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		result := svc.Info(cmd.Context())
		return finish(cmd, result, result.Error)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
