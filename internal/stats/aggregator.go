// Package stats accumulates per-level touch outcomes across days.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/Kroner-bit/pivot-stat/internal/model"
)

// Aggregator owns the LevelStats of one run, or of one worker's share of a run.
// It is not safe for concurrent use; parallel callers keep one Aggregator each and Merge.
type Aggregator struct {
	levels map[model.LevelName]*model.LevelStats
}

// NewAggregator creates an Aggregator with a zeroed entry for every level.
func NewAggregator() *Aggregator {
	a := &Aggregator{levels: make(map[model.LevelName]*model.LevelStats, len(model.LevelOrder))}
	for _, name := range model.LevelOrder {
		a.levels[name] = &model.LevelStats{}
	}
	return a
}

// Add counts one touch event.
func (a *Aggregator) Add(ev model.TouchEvent) {
	s := a.entry(ev.Level)
	s.Count++
	switch ev.Direction {
	case model.DirectionLower:
		s.FirstLower++
	case model.DirectionUpper:
		s.FirstUpper++
	}
}

// AddAll counts every event of one day.
func (a *Aggregator) AddAll(events []model.TouchEvent) {
	for _, ev := range events {
		a.Add(ev)
	}
}

// Merge sums other into a field by field.
func (a *Aggregator) Merge(other *Aggregator) {
	for name, s := range other.levels {
		dst := a.entry(name)
		dst.Count += s.Count
		dst.FirstLower += s.FirstLower
		dst.FirstUpper += s.FirstUpper
	}
}

// Get returns a copy of the stats of one level.
func (a *Aggregator) Get(name model.LevelName) model.LevelStats {
	if s, ok := a.levels[name]; ok {
		return *s
	}
	return model.LevelStats{}
}

// Total returns the number of events counted over all levels.
func (a *Aggregator) Total() int {
	n := 0
	for _, s := range a.levels {
		n += s.Count
	}
	return n
}

func (a *Aggregator) entry(name model.LevelName) *model.LevelStats {
	s, ok := a.levels[name]
	if !ok {
		s = &model.LevelStats{}
		a.levels[name] = s
	}
	return s
}

// LevelCount pairs a level with its counters.
type LevelCount struct {
	Level model.LevelName
	model.LevelStats
}

// Snapshot copies the counters of every level in the fixed bottom-to-top order,
// including levels that were never touched.
func (a *Aggregator) Snapshot() []LevelCount {
	out := make([]LevelCount, len(model.LevelOrder))
	for i, name := range model.LevelOrder {
		out[i] = LevelCount{Level: name, LevelStats: a.Get(name)}
	}
	return out
}

// Row is the read-out of one level.
type Row struct {
	Level    model.LevelName
	Count    int
	LowerPct float64
	UpperPct float64
	TotalPct float64
}

// Rows returns one row per touched level in the fixed bottom-to-top order.
// Levels that were never touched are left out.
func (a *Aggregator) Rows() []Row {
	rows := make([]Row, 0, len(model.LevelOrder))
	for _, lc := range a.Snapshot() {
		if lc.Count == 0 {
			continue
		}
		lower := pct(lc.FirstLower, lc.Count)
		upper := pct(lc.FirstUpper, lc.Count)
		rows = append(rows, Row{
			Level:    lc.Level,
			Count:    lc.Count,
			LowerPct: lower,
			UpperPct: upper,
			TotalPct: lower + upper,
		})
	}
	return rows
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100.0
}

// Round1 rounds a percentage to one decimal place, half away from zero.
func Round1(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(1).Float64()
	return v
}
