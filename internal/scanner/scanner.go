// Package scanner finds, for one trading day, the first touch of every pivot level and
// which price-adjacent level is reached next.
package scanner

import (
	"sort"

	"github.com/Kroner-bit/pivot-stat/internal/model"
)

// Ranked returns the levels sorted by price ascending. Equal prices keep the fixed
// LevelOrder, so a degenerate set still ranks deterministically.
func Ranked(levels model.LevelSet) []model.Level {
	ranked := make([]model.Level, len(levels))
	copy(ranked, levels[:])
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Price < ranked[j].Price })
	return ranked
}

// ScanDay walks the day's bars in time order. The first time a bar touches a level, the
// rest of the day (starting at that same bar) is searched for the level's lower and upper
// neighbours by price rank. Whichever neighbour is touched on the earlier bar decides the
// direction. When both are touched on the same bar the direction is lower: the lower
// neighbour is always tested first.
//
// One event is returned per touched level, in first-touch order.
func ScanDay(bars []model.Bar, levels model.LevelSet) []model.TouchEvent {
	ranked := Ranked(levels)
	touched := make([]bool, len(ranked))
	var events []model.TouchEvent

	for i, bar := range bars {
		for r, lvl := range ranked {
			if touched[r] || !bar.Touches(lvl.Price) {
				continue
			}
			touched[r] = true
			events = append(events, model.TouchEvent{
				Level:     lvl.Name,
				Direction: firstNeighbour(bars[i:], ranked, r),
				BarIndex:  i,
			})
		}
	}
	return events
}

// firstNeighbour searches bars for the neighbours of ranked[r].
func firstNeighbour(bars []model.Bar, ranked []model.Level, r int) model.Direction {
	hasLower := r > 0
	hasUpper := r < len(ranked)-1
	if !hasLower && !hasUpper {
		return model.DirectionNone
	}

	var lower, upper float64
	if hasLower {
		lower = ranked[r-1].Price
	}
	if hasUpper {
		upper = ranked[r+1].Price
	}

	for _, b := range bars {
		if hasLower && b.Touches(lower) {
			return model.DirectionLower
		}
		if hasUpper && b.Touches(upper) {
			return model.DirectionUpper
		}
	}
	return model.DirectionNone
}
