// Package pipeline wires the configured input, the session driver and the report
// renderers into one batch analysis run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Kroner-bit/pivot-stat/internal/collector"
	"github.com/Kroner-bit/pivot-stat/internal/config"
	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/report"
	"github.com/Kroner-bit/pivot-stat/internal/session"
)

// Outcome is everything one run produced.
type Outcome struct {
	Source   string
	Result   *session.Result
	Report   string
	Images   []string
	Duration time.Duration
}

// SourceFor builds the bar source selected by the config.
func SourceFor(cfg *config.Config) collector.Source {
	cols := collector.Columns{
		Datetime: cfg.Input.Columns.Datetime,
		Open:     cfg.Input.Columns.Open,
		High:     cfg.Input.Columns.High,
		Low:      cfg.Input.Columns.Low,
		Close:    cfg.Input.Columns.Close,
		Volume:   cfg.Input.Columns.Volume,
	}
	if cfg.Input.SQLitePath != "" {
		return collector.NewSQLiteSource(cfg.Input.SQLitePath, cfg.Input.Table, cols)
	}
	return collector.NewCSVSource(cfg.Input.Path, cfg.Input.Separator, cols)
}

// InputName is the file the run reads from.
func InputName(cfg *config.Config) string {
	if cfg.Input.SQLitePath != "" {
		return cfg.Input.SQLitePath + ":" + cfg.Input.Table
	}
	return cfg.Input.Path
}

// Run loads the series, analyses every day and renders the outputs. Nothing is written
// when loading or analysis fails.
func Run(ctx context.Context, cfg *config.Config) (*Outcome, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	col := collector.NewCollector(SourceFor(cfg), collector.DuplicatePolicy(cfg.Input.Duplicates))
	bars, err := col.Collect(ctx)
	if err != nil {
		return nil, err
	}

	res, err := session.NewDriver(loc, cfg.Analysis.Workers).Run(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("analyse: %w", err)
	}
	logger.Infof("analysed %s days (%s scanned, %s skipped), %s touch events",
		humanize.Comma(int64(res.Days)), humanize.Comma(int64(res.ScannedDays)),
		humanize.Comma(int64(res.SkippedDays)), humanize.Comma(int64(res.Events)))

	out := &Outcome{
		Source: InputName(cfg),
		Result: res,
		Report: report.FormatReport(res),
	}
	if !cfg.Output.NoImages {
		images, err := renderImages(res, cfg)
		if err != nil {
			return nil, err
		}
		out.Images = images
	}
	out.Duration = time.Since(start)
	return out, nil
}

func renderImages(res *session.Result, cfg *config.Config) ([]string, error) {
	rows := res.Stats.Rows()
	if len(rows) == 0 {
		logger.Warnf("no touch events, skipping images")
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tablePath := filepath.Join(cfg.Output.Dir, cfg.Output.TableImage)
	chartPath := filepath.Join(cfg.Output.Dir, cfg.Output.ChartImage)
	for _, step := range []struct {
		path   string
		render func() error
	}{
		{tablePath, func() error { return report.RenderTableImage(rows, tablePath) }},
		{chartPath, func() error { return report.RenderBarChart(rows, chartPath) }},
	} {
		if err := step.render(); err != nil {
			return nil, err
		}
		logger.Infof("wrote %s", step.path)
	}
	return []string{tablePath, chartPath}, nil
}
