package calculator

import (
	"errors"
	"math"

	"github.com/Kroner-bit/pivot-stat/internal/model"
)

// DailyHLC scans one date's bars and returns the highest high, the lowest low and the
// close of the last bar. Bars must be in time order.
func DailyHLC(date string, bars []model.Bar) (model.DayHLC, error) {
	if len(bars) == 0 {
		return model.DayHLC{}, errors.New("no bars provided")
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	for i := range bars {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return model.DayHLC{
		Date:  date,
		High:  high,
		Low:   low,
		Close: bars[len(bars)-1].Close,
	}, nil
}

