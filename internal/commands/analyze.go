package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/pipeline"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the first-direction analysis once and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}
	addInputFlags(cmd, opts)
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out.Report)
	for _, img := range out.Images {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", img)
	}
	logger.Debugf("analysis took %s", out.Duration)
	return nil
}
