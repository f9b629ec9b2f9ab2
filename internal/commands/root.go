package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kroner-bit/pivot-stat/internal/config"
	"github.com/Kroner-bit/pivot-stat/internal/logger"
)

// options holds every command-line flag. Only flags the user set override the config.
type options struct {
	configPath string
	verbose    bool

	csv      string
	sep      string
	datetime string
	open     string
	high     string
	low      string
	close    string
	tz       string
	sqlite   string
	table    string
	workers  int
	outDir   string
	noImages bool

	runNow bool
}

// NewRootCmd builds the command tree. Without a subcommand the root runs an analysis.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "pivotstat",
		Short: "Pivot-level touch statistics over 1-minute OHLC bars",
		Long: `pivotstat computes daily floor-pivot levels from the preceding calendar date and
measures, for every level touched during the day, which adjacent level price
reaches first afterwards.

Examples:
  # Analyse a tab-separated MetaTrader export
  pivotstat --csv EURUSD_M1.csv

  # Semicolon separated, custom columns, days split in New York time
  pivotstat analyze --csv bars.csv --sep ";" --datetime Date --close Last --tz America/New_York

  # Re-run every weekday and post the report to Telegram
  pivotstat schedule --config configs/config.yaml --run-now`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath+", or $CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	addInputFlags(rootCmd, opts)

	rootCmd.AddCommand(newAnalyzeCmd(opts), newScheduleCmd(opts))
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func addInputFlags(cmd *cobra.Command, opts *options) {
	f := cmd.Flags()
	f.StringVar(&opts.csv, "csv", "", "path to the delimited bar file")
	f.StringVar(&opts.sep, "sep", `\t`, "field separator, a single character (\\t for tab)")
	f.StringVar(&opts.datetime, "datetime", "Time", "timestamp column name")
	f.StringVar(&opts.open, "open", "Open", "open column name")
	f.StringVar(&opts.high, "high", "High", "high column name")
	f.StringVar(&opts.low, "low", "Low", "low column name")
	f.StringVar(&opts.close, "close", "Close", "close column name")
	f.StringVar(&opts.tz, "tz", "UTC", "IANA timezone that defines the calendar day")
	f.StringVar(&opts.sqlite, "sqlite", "", "read bars from this SQLite database instead of a file")
	f.StringVar(&opts.table, "table", "bars", "SQLite table holding the bars")
	f.IntVar(&opts.workers, "workers", 1, "number of days analysed in parallel")
	f.StringVar(&opts.outDir, "out-dir", ".", "directory for the PNG outputs")
	f.BoolVar(&opts.noImages, "no-images", false, "skip the PNG table and bar chart")
}

// loadConfig reads the config file and environment, then applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	path := opts.configPath
	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = config.DefaultPath
	}
	if explicit {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: config file: %v", config.ErrInvalid, err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, opts, cfg)

	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Log.Env); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Debugf("config loaded from %s", path)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	f := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("csv", &cfg.Input.Path, opts.csv)
	set("sep", &cfg.Input.Separator, opts.sep)
	set("datetime", &cfg.Input.Columns.Datetime, opts.datetime)
	set("open", &cfg.Input.Columns.Open, opts.open)
	set("high", &cfg.Input.Columns.High, opts.high)
	set("low", &cfg.Input.Columns.Low, opts.low)
	set("close", &cfg.Input.Columns.Close, opts.close)
	set("tz", &cfg.Input.Timezone, opts.tz)
	set("sqlite", &cfg.Input.SQLitePath, opts.sqlite)
	set("table", &cfg.Input.Table, opts.table)
	set("out-dir", &cfg.Output.Dir, opts.outDir)

	// a path given on the command line replaces whichever input the config named
	if f.Changed("csv") && !f.Changed("sqlite") {
		cfg.Input.SQLitePath = ""
	}
	if f.Changed("sqlite") && !f.Changed("csv") {
		cfg.Input.Path = ""
	}
	if f.Changed("workers") {
		cfg.Analysis.Workers = opts.workers
	}
	if f.Changed("no-images") {
		cfg.Output.NoImages = opts.noImages
	}
}
