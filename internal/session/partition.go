package session

import (
	"time"

	"github.com/Kroner-bit/pivot-stat/internal/calculator"
	"github.com/Kroner-bit/pivot-stat/internal/model"
)

const dateLayout = "2006-01-02"

// PartitionByDay splits a time-sorted series into calendar days of loc. Days come back in
// chronological order; a date without bars simply has no slice.
func PartitionByDay(bars []model.Bar, loc *time.Location) []model.DaySlice {
	var days []model.DaySlice
	for _, b := range bars {
		date := b.Time.In(loc).Format(dateLayout)
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Bars = append(days[n-1].Bars, b)
			continue
		}
		days = append(days, model.DaySlice{Date: date, Bars: []model.Bar{b}})
	}
	return days
}

// SummarizeDays builds the per-date high/low/close table used to derive the next day's levels.
func SummarizeDays(days []model.DaySlice) map[string]model.DayHLC {
	out := make(map[string]model.DayHLC, len(days))
	for _, d := range days {
		hlc, err := calculator.DailyHLC(d.Date, d.Bars)
		if err != nil {
			continue
		}
		out[d.Date] = hlc
	}
	return out
}

// PreviousDate returns the calendar date before date (YYYY-MM-DD).
func PreviousDate(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(dateLayout), nil
}
