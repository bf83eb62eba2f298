package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lmurray-au/dbmaint/internal/duration"
	"github.com/lmurray-au/dbmaint/internal/maint"
)

var (
	cleanupDays      int
	cleanupOlderThan string
	cleanupDryRun    bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete measurements older than the retention cutoff",
	Long: `Delete measurements older than the retention cutoff in batches, remove
sessions left without measurements, reclaim the freed space, and report the
size delta. With --dry-run, count the affected rows and estimate the space
they occupy without deleting anything.

The cutoff defaults to the configured retention_days. Override it with
--days or with --older-than (e.g. 36h, 14d, 2w, 3m).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		opts := maint.CleanupOptions{Days: cleanupDays, DryRun: cleanupDryRun}
		if cleanupOlderThan != "" {
			age, err := duration.Parse(cleanupOlderThan)
			if err != nil {
				return err
			}
			opts.OlderThan = &age
		}

		result := svc.Cleanup(cmd.Context(), opts)
		return finish(cmd, result, result.Error)
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Retention in days (default: configured retention_days)")
	cleanupCmd.Flags().StringVar(&cleanupOlderThan, "older-than", "", "Retention as a duration, e.g. 36h, 14d, 2w, 3m")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Report what would be deleted without deleting")
	rootCmd.AddCommand(cleanupCmd)
}
