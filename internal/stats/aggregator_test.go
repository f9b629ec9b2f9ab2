package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kroner-bit/pivot-stat/internal/model"
)

func ev(level model.LevelName, dir model.Direction) model.TouchEvent {
	return model.TouchEvent{Level: level, Direction: dir}
}

func TestAggregator_Add(t *testing.T) {
	a := NewAggregator()
	a.AddAll([]model.TouchEvent{
		ev(model.LevelPP, model.DirectionLower),
		ev(model.LevelPP, model.DirectionUpper),
		ev(model.LevelPP, model.DirectionNone),
		ev(model.LevelPP, model.DirectionUpper),
		ev(model.LevelR3, model.DirectionLower),
	})

	assert.Equal(t, model.LevelStats{Count: 4, FirstLower: 1, FirstUpper: 2}, a.Get(model.LevelPP))
	assert.Equal(t, model.LevelStats{Count: 1, FirstLower: 1}, a.Get(model.LevelR3))
	assert.Equal(t, model.LevelStats{}, a.Get(model.LevelS3))
	assert.Equal(t, 5, a.Total())
}

func TestAggregator_Rows(t *testing.T) {
	a := NewAggregator()
	a.AddAll([]model.TouchEvent{
		ev(model.LevelR1, model.DirectionUpper),
		ev(model.LevelS1, model.DirectionLower),
		ev(model.LevelS1, model.DirectionUpper),
		ev(model.LevelS1, model.DirectionNone),
		ev(model.LevelS1, model.DirectionLower),
	})

	rows := a.Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, model.LevelS1, rows[0].Level)
	assert.Equal(t, 4, rows[0].Count)
	assert.InDelta(t, 50.0, rows[0].LowerPct, 1e-9)
	assert.InDelta(t, 25.0, rows[0].UpperPct, 1e-9)
	assert.InDelta(t, 75.0, rows[0].TotalPct, 1e-9)

	assert.Equal(t, model.LevelR1, rows[1].Level)
	assert.InDelta(t, 0.0, rows[1].LowerPct, 1e-9)
	assert.InDelta(t, 100.0, rows[1].UpperPct, 1e-9)
}

func TestAggregator_MergeIsOrderInvariant(t *testing.T) {
	days := [][]model.TouchEvent{
		{ev(model.LevelPP, model.DirectionLower), ev(model.LevelS1, model.DirectionUpper)},
		{ev(model.LevelPP, model.DirectionUpper)},
		{ev(model.LevelPP, model.DirectionNone), ev(model.LevelR2, model.DirectionLower)},
	}

	seq := NewAggregator()
	for _, d := range days {
		seq.AddAll(d)
	}

	p1, p2 := NewAggregator(), NewAggregator()
	p1.AddAll(days[2])
	p2.AddAll(days[1])
	p2.AddAll(days[0])
	merged := NewAggregator()
	merged.Merge(p2)
	merged.Merge(p1)

	assert.Equal(t, seq.Rows(), merged.Rows())
	for _, name := range model.LevelOrder {
		assert.Equal(t, seq.Get(name), merged.Get(name), name)
	}
}

func TestAggregator_Bounds(t *testing.T) {
	a := NewAggregator()
	for i := 0; i < 10; i++ {
		a.Add(ev(model.LevelS3, model.DirectionUpper))
		a.Add(ev(model.LevelS3, model.DirectionNone))
	}
	s := a.Get(model.LevelS3)
	assert.LessOrEqual(t, s.FirstLower+s.FirstUpper, s.Count)
	for _, r := range a.Rows() {
		assert.LessOrEqual(t, r.TotalPct, 100.0+1e-9)
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 33.3, Round1(100.0/3))
	assert.Equal(t, 66.7, Round1(200.0/3))
	assert.Equal(t, 12.5, Round1(12.5))
	assert.Equal(t, 0.0, Round1(0))
}

func TestAggregator_Snapshot(t *testing.T) {
	a := NewAggregator()
	a.Add(ev(model.LevelPP, model.DirectionLower))
	a.Add(ev(model.LevelR3, model.DirectionNone))

	snap := a.Snapshot()
	require.Len(t, snap, len(model.LevelOrder))
	for i, lc := range snap {
		assert.Equal(t, model.LevelOrder[i], lc.Level)
	}
	assert.Equal(t, LevelCount{Level: model.LevelPP, LevelStats: model.LevelStats{Count: 1, FirstLower: 1}}, snap[6])
	assert.Equal(t, 1, snap[12].Count)
	assert.Equal(t, model.LevelStats{}, snap[0].LevelStats)

	// later adds do not leak into an earlier snapshot
	a.Add(ev(model.LevelPP, model.DirectionUpper))
	assert.Equal(t, 1, snap[6].Count)
	assert.Equal(t, 2, a.Snapshot()[6].Count)
}
