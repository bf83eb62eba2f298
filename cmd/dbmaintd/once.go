package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run one size-gated maintenance pass and exit",
	Long: `Run the same auto-maintain pass the scheduler runs daily: archive and
cleanup when the database exceeds its size limit, optimize when it exceeds
the vacuum threshold, and a backup when auto_backup is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, log, err := newService()
		if err != nil {
			return err
		}

		log.Info("on-demand maintenance starting")
		result := svc.AutoMaintain(cmd.Context())

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if result.Error != "" {
			cmd.SilenceErrors = true
			return fmt.Errorf("%s", result.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
