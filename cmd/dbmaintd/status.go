package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/schedule"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	errMark  = color.New(color.FgRed).SprintFunc()
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database health and the scheduled jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		cfg := svc.Config()
		out := cmd.OutOrStdout()

		info := svc.Info(cmd.Context())
		fmt.Fprintf(out, "database  %s\n", svc.DBPath())
		switch {
		case info.Error != "":
			fmt.Fprintf(out, "state     %s %s\n", errMark("error"), info.Error)
		case !info.Exists:
			fmt.Fprintf(out, "state     %s no database file yet\n", warnMark("missing"))
		default:
			mark := okMark("ok")
			if info.SizeMB > float64(cfg.MaxDBSizeMB) {
				mark = warnMark("over limit")
			}
			fmt.Fprintf(out, "state     %s\n", mark)
			fmt.Fprintf(out, "size      %s (limit %d MB)\n", format.HumanSize(info.SizeBytes), cfg.MaxDBSizeMB)
			fmt.Fprintf(out, "rows      %d measurements, %d sessions\n", info.Measurements, info.Sessions)
			if info.Earliest != "" {
				fmt.Fprintf(out, "range     %s .. %s\n", info.Earliest, info.Latest)
			}
		}

		fmt.Fprintf(out, "retention %d days, archive after %d days\n", cfg.RetentionDays, cfg.ArchiveDays)

		if !cfg.Schedule.Enabled {
			fmt.Fprintf(out, "schedule  %s (on-demand only; run 'dbmaintd once')\n", warnMark("disabled"))
			return nil
		}

		sched := schedule.New(svc, nil)
		if err := sched.Register(); err != nil {
			fmt.Fprintf(out, "schedule  %s %v\n", errMark("invalid"), err)
			return nil
		}
		fmt.Fprintf(out, "schedule  %s daily at %s\n", okMark("enabled"), cfg.Schedule.DailyAt)
		for _, job := range sched.Jobs() {
			fmt.Fprintf(out, "  job     %s\n", job)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
