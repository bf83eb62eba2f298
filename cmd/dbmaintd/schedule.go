package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lmurray-au/dbmaint/internal/logger"
	"github.com/lmurray-au/dbmaint/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the maintenance scheduler until interrupted",
	Long: `Start the polling scheduler and block until SIGINT or SIGTERM: a daily
auto-maintain pass at schedule.daily_at, an hourly emergency size check, and
a six-hourly pass when schedule.development is set.

When schedule.enabled is false the scheduler refuses to start and points at
'dbmaintd once' for on-demand maintenance instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, log, err := newService()
		if err != nil {
			return err
		}

		sched := schedule.New(svc, log)
		if !sched.Enabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "scheduling is disabled in config (schedule.enabled: false)")
			fmt.Fprintln(cmd.OutOrStdout(), "running in on-demand mode: use 'dbmaintd once' to maintain now")
			return nil
		}
		if err := sched.Register(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		for _, job := range sched.Jobs() {
			log.Info("job registered", logger.Field{Key: "job", Value: job})
		}
		return sched.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
