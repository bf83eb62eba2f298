package cmd

import (
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Rebuild indexes, refresh statistics, and compact the database",
	Long: `Run REINDEX, ANALYZE, and VACUUM against the database, then truncate the
write-ahead log. Reports the file size before and after and the space
reclaimed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		result := svc.Optimize(cmd.Context())
		return finish(cmd, result, result.Error)
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}
