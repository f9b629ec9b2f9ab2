package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/notifier"
	"github.com/Kroner-bit/pivot-stat/internal/pipeline"
	"github.com/Kroner-bit/pivot-stat/internal/scheduler"
)

func newScheduleCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Re-run the analysis on schedule.cron and post each report to Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, opts)
		},
	}
	addInputFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.runNow, "run-now", false, "run once immediately on start")
	return cmd
}

func runSchedule(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSchedule(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(runCtx context.Context) (*pipeline.Outcome, error) {
		// reload so edits to the config and .env apply to the next run
		fresh, err := loadConfig(cmd, opts)
		if err != nil {
			return nil, err
		}
		return pipeline.Run(runCtx, fresh)
	}

	var sched *scheduler.Scheduler
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched = scheduler.NewScheduler(ctx, run, tn)
	} else {
		logger.Warnf("telegram is not configured, reports are only logged")
		sched = scheduler.NewScheduler(ctx, run, nil)
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Infof("telegram polling started")
	}
	if opts.runNow || os.Getenv("RUN_ON_START") == "true" {
		logger.Infof("running analysis now")
		go sched.RunNow()
	}

	logger.Infof("pivotstat scheduled on %q for %s. Press Ctrl+C to stop.", cfg.Schedule.Cron, pipeline.InputName(cfg))
	<-ctx.Done()
	logger.Infof("shutdown signal received, stopping...")
	return nil
}
