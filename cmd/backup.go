package cmd

import (
	"github.com/spf13/cobra"
)

var backupName string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the database to a timestamped backup file",
	Long: `Checkpoint the write-ahead log and copy the database file into the archives
directory next to it. The backup name defaults to backup_<timestamp>.db;
override it with --name.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		result := svc.Backup(cmd.Context(), backupName)
		return finish(cmd, result, result.Error)
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupName, "name", "", "Backup file name (default: backup_<timestamp>.db)")
	rootCmd.AddCommand(backupCmd)
}
