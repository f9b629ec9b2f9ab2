package calculator

import "github.com/Kroner-bit/pivot-stat/internal/model"

// FloorPivots computes the classic floor-formula pivots and the midpoints between
// adjacent pivots from the previous day's high, low and close.
func FloorPivots(high, low, close float64) model.LevelSet {
	pp := (high + low + close) / 3
	rng := high - low

	s1 := 2*pp - high
	r1 := 2*pp - low
	s2 := pp - rng
	r2 := pp + rng
	s3 := low - 2*(high-pp)
	r3 := high + 2*(pp-low)

	mid := func(a, b float64) float64 { return (a + b) / 2 }

	return model.LevelSet{
		{Name: model.LevelS3, Price: s3},
		{Name: model.LevelMidS23, Price: mid(s3, s2)},
		{Name: model.LevelS2, Price: s2},
		{Name: model.LevelMidS12, Price: mid(s2, s1)},
		{Name: model.LevelS1, Price: s1},
		{Name: model.LevelMidPS1, Price: mid(s1, pp)},
		{Name: model.LevelPP, Price: pp},
		{Name: model.LevelMidRP1, Price: mid(pp, r1)},
		{Name: model.LevelR1, Price: r1},
		{Name: model.LevelMidR21, Price: mid(r1, r2)},
		{Name: model.LevelR2, Price: r2},
		{Name: model.LevelMidR32, Price: mid(r2, r3)},
		{Name: model.LevelR3, Price: r3},
	}
}

// PivotsFor is FloorPivots applied to an aggregated day.
func PivotsFor(d model.DayHLC) model.LevelSet {
	return FloorPivots(d.High, d.Low, d.Close)
}
