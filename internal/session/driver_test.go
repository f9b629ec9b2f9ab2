package session

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kroner-bit/pivot-stat/internal/model"
)

func bar(ts time.Time, low, high, close float64) model.Bar {
	return model.Bar{Time: ts, Open: close, High: high, Low: low, Close: close}
}

func utc(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
}

// syntheticSeries produces a deterministic zig-zag minute series over n days.
func syntheticSeries(n int) []model.Bar {
	var bars []model.Bar
	price := 100.0
	for d := 0; d < n; d++ {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
		for m := 0; m < 240; m++ {
			step := math.Sin(float64(d*240+m)/17.0) * 0.4
			open := price
			price += step
			high := math.Max(open, price) + 0.1
			low := math.Min(open, price) - 0.1
			bars = append(bars, model.Bar{
				Time: start.Add(time.Duration(m) * 5 * time.Minute),
				Open: open, High: high, Low: low, Close: price,
			})
		}
	}
	return bars
}

func TestPartitionByDay_Timezone(t *testing.T) {
	bars := []model.Bar{
		bar(utc(4, 22, 30), 1, 2, 1.5),
		bar(utc(4, 23, 30), 1, 2, 1.5),
		bar(utc(5, 10, 0), 1, 2, 1.5),
	}

	days := PartitionByDay(bars, time.UTC)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-04", days[0].Date)
	assert.Len(t, days[0].Bars, 2)

	plusOne := time.FixedZone("UTC+1", 3600)
	days = PartitionByDay(bars, plusOne)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-04", days[0].Date)
	assert.Len(t, days[0].Bars, 1)
	assert.Equal(t, "2024-03-05", days[1].Date)
	assert.Len(t, days[1].Bars, 2)
}

func TestPreviousDate(t *testing.T) {
	prev, err := PreviousDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", prev)

	prev, err = PreviousDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", prev)

	_, err = PreviousDate("not-a-date")
	assert.Error(t, err)
}

func TestSummarizeDays(t *testing.T) {
	days := PartitionByDay([]model.Bar{
		bar(utc(4, 9, 0), 99, 101, 100),
		bar(utc(4, 9, 1), 95, 110, 104),
		bar(utc(4, 9, 2), 90, 102, 100),
	}, time.UTC)

	summary := SummarizeDays(days)
	assert.Equal(t, model.DayHLC{Date: "2024-03-04", High: 110, Low: 90, Close: 100}, summary["2024-03-04"])
}

func TestDriver_GapDaysAreSkipped(t *testing.T) {
	// 03-04 defines H=110 L=90 C=100, so 03-05 trades around PP=100.
	bars := []model.Bar{
		bar(utc(4, 9, 0), 90, 110, 100),
		bar(utc(5, 9, 0), 99, 101, 100),
		bar(utc(5, 9, 1), 103, 105.5, 105),
		// 03-06 is missing, so 03-07 has no levels
		bar(utc(7, 9, 0), 0, 1000, 500),
	}

	res, err := NewDriver(time.UTC, 1).Run(context.Background(), bars)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Days)
	assert.Equal(t, 1, res.ScannedDays)
	assert.Equal(t, 2, res.SkippedDays)
	assert.Equal(t, 2, res.Events)
	assert.Equal(t, "2024-03-04", res.FirstDate)
	assert.Equal(t, "2024-03-07", res.LastDate)

	assert.Equal(t, model.LevelStats{Count: 1, FirstUpper: 1}, res.Stats.Get(model.LevelPP))
	assert.Equal(t, model.LevelStats{Count: 1}, res.Stats.Get(model.LevelMidRP1))
	assert.Equal(t, 2, res.Stats.Total())
}

func TestDriver_UsesWholePrecedingDate(t *testing.T) {
	// preceding date split over two bars: H from the first, L and last close from the second
	bars := []model.Bar{
		bar(utc(4, 9, 0), 100, 110, 105),
		bar(utc(4, 15, 0), 90, 100, 100),
		bar(utc(5, 9, 0), 129, 131, 130),
	}
	res, err := NewDriver(time.UTC, 1).Run(context.Background(), bars)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Get(model.LevelR3).Count)
}

func TestDriver_WorkersDoNotChangeResult(t *testing.T) {
	bars := syntheticSeries(40)

	seq, err := NewDriver(time.UTC, 1).Run(context.Background(), bars)
	require.NoError(t, err)
	par, err := NewDriver(time.UTC, 4).Run(context.Background(), bars)
	require.NoError(t, err)

	assert.Equal(t, seq.Stats.Snapshot(), par.Stats.Snapshot())
	assert.Equal(t, seq.ScannedDays, par.ScannedDays)
	assert.Equal(t, seq.SkippedDays, par.SkippedDays)
	assert.Equal(t, seq.Events, par.Events)
	assert.Equal(t, 39, seq.ScannedDays)

	for _, lc := range seq.Stats.Snapshot() {
		assert.LessOrEqual(t, lc.Count, seq.ScannedDays, lc.Level)
		assert.LessOrEqual(t, lc.FirstLower+lc.FirstUpper, lc.Count, lc.Level)
	}
	assert.Greater(t, seq.Events, 0)
}

func TestDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDriver(time.UTC, 2).Run(ctx, syntheticSeries(5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDriver_Empty(t *testing.T) {
	res, err := NewDriver(nil, 0).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Days)
	assert.Empty(t, res.Stats.Rows())
}
