// Package session drives a full analysis run: it splits the bar series into calendar
// days, derives each day's levels from the preceding date and aggregates the scans.
package session

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kroner-bit/pivot-stat/internal/calculator"
	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/model"
	"github.com/Kroner-bit/pivot-stat/internal/scanner"
	"github.com/Kroner-bit/pivot-stat/internal/stats"
)

// Result is the outcome of one run.
type Result struct {
	Stats       *stats.Aggregator
	Days        int // calendar days with at least one bar
	ScannedDays int
	SkippedDays int // no data on the preceding calendar date
	Events      int
	FirstDate   string
	LastDate    string
}

// Driver runs the per-day pipeline.
type Driver struct {
	Location *time.Location
	Workers  int
}

// NewDriver creates a Driver. workers < 1 means sequential.
func NewDriver(loc *time.Location, workers int) *Driver {
	if loc == nil {
		loc = time.UTC
	}
	if workers < 1 {
		workers = 1
	}
	return &Driver{Location: loc, Workers: workers}
}

type partial struct {
	agg     *stats.Aggregator
	scanned int
	skipped int
	events  int
}

// Run analyses a time-sorted bar series. Days are sharded round-robin over the workers;
// each worker owns its own aggregator and the partials are merged in worker order, so the
// result does not depend on scheduling.
func (d *Driver) Run(ctx context.Context, bars []model.Bar) (*Result, error) {
	days := PartitionByDay(bars, d.Location)
	summary := SummarizeDays(days)

	workers := d.Workers
	if workers > len(days) {
		workers = len(days)
	}
	partials := make([]*partial, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		p := &partial{agg: stats.NewAggregator()}
		partials[w] = p
		g.Go(func() error {
			for i := w; i < len(days); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := d.runDay(days[i], summary, p); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Stats: stats.NewAggregator(), Days: len(days)}
	for _, p := range partials {
		res.Stats.Merge(p.agg)
		res.ScannedDays += p.scanned
		res.SkippedDays += p.skipped
		res.Events += p.events
	}
	if len(days) > 0 {
		res.FirstDate = days[0].Date
		res.LastDate = days[len(days)-1].Date
	}
	return res, nil
}

func (d *Driver) runDay(day model.DaySlice, summary map[string]model.DayHLC, p *partial) error {
	if len(day.Bars) == 0 {
		p.skipped++
		return nil
	}
	prev, err := PreviousDate(day.Date)
	if err != nil {
		return fmt.Errorf("day %s: %w", day.Date, err)
	}
	hlc, ok := summary[prev]
	if !ok {
		logger.Debugf("skip %s: no bars on %s", day.Date, prev)
		p.skipped++
		return nil
	}

	events := scanner.ScanDay(day.Bars, calculator.PivotsFor(hlc))
	p.agg.AddAll(events)
	p.scanned++
	p.events += len(events)
	return nil
}
