package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lmurray-au/dbmaint/internal/duration"
	"github.com/lmurray-au/dbmaint/internal/maint"
)

var (
	archiveDays       int
	archiveOlderThan  string
	archiveNoCompress bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Export old measurements to a timestamped CSV file",
	Long: `Export measurements older than the archive cutoff to a timestamp-named CSV
file under the archives directory next to the database, gzipped unless
--no-compress is given. The exported rows stay in the database; run cleanup
to delete them.

The cutoff defaults to the configured archive_days. Override it with --days
or with --older-than (e.g. 36h, 14d, 2w, 3m).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		opts := maint.ArchiveOptions{Days: archiveDays}
		if archiveOlderThan != "" {
			age, err := duration.Parse(archiveOlderThan)
			if err != nil {
				return err
			}
			opts.OlderThan = &age
		}
		if archiveNoCompress {
			compress := false
			opts.Compress = &compress
		}

		result := svc.Archive(cmd.Context(), opts)
		return finish(cmd, result, result.Error)
	},
}

func init() {
	archiveCmd.Flags().IntVar(&archiveDays, "days", 0, "Archive age in days (default: configured archive_days)")
	archiveCmd.Flags().StringVar(&archiveOlderThan, "older-than", "", "Archive age as a duration, e.g. 36h, 14d, 2w, 3m")
	archiveCmd.Flags().BoolVar(&archiveNoCompress, "no-compress", false, "Write plain CSV instead of gzip")
	rootCmd.AddCommand(archiveCmd)
}
