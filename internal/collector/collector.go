package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/model"
)

// MockSource returns fixed or generated data for development and testing.
type MockSource struct {
	Price float64
	Days  int
	Bars  []model.Bar
	Err   error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) LoadBars(_ context.Context) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, m.Days), nil
}

// generateMockBars builds hourly bars drifting around basePrice, 24 per day.
func generateMockBars(basePrice float64, days int) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := days * 24
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		p := basePrice * (1 + float64(i%48-24)*0.001)
		bars[i] = model.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000,
		}
	}
	return bars
}

// DuplicatePolicy decides what happens to bars that share a timestamp.
type DuplicatePolicy string

const (
	DuplicatesKeepFirst DuplicatePolicy = "first"
	DuplicatesReject    DuplicatePolicy = "reject"
)

// Collector loads a bar series and puts it into the order the analysis expects.
type Collector struct {
	Source     Source
	Duplicates DuplicatePolicy
}

// NewCollector creates a new Collector.
func NewCollector(source Source, duplicates DuplicatePolicy) *Collector {
	if duplicates == "" {
		duplicates = DuplicatesKeepFirst
	}
	return &Collector{Source: source, Duplicates: duplicates}
}

// Collect loads the series, sorts it by time (stable) and applies the duplicate policy.
func (c *Collector) Collect(ctx context.Context) ([]model.Bar, error) {
	bars, err := c.Source.LoadBars(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bars from %s: %w", c.Source.Name(), err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars in %s source", ErrInput, c.Source.Name())
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := bars[:1]
	dropped := 0
	for _, b := range bars[1:] {
		if b.Time.Equal(out[len(out)-1].Time) {
			if c.Duplicates == DuplicatesReject {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateTimestamp, b.Time.Format(time.RFC3339))
			}
			dropped++
			continue
		}
		out = append(out, b)
	}
	if dropped > 0 {
		logger.Warnf("dropped %d bars with duplicate timestamps (kept the first of each)", dropped)
	}

	logger.Infof("loaded %d bars from %s (%s .. %s)", len(out), c.Source.Name(),
		out[0].Time.Format(time.RFC3339), out[len(out)-1].Time.Format(time.RFC3339))
	return out, nil
}
