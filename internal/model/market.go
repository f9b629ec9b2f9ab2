package model

import "time"

// Bar represents a single 1-minute OHLCV candlestick.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Touches reports whether the bar's [Low, High] range contains price, inclusive on both ends.
func (b Bar) Touches(price float64) bool {
	return b.Low <= price && price <= b.High
}

// DaySlice holds the bars of one calendar day in the analysis timezone.
type DaySlice struct {
	Date string // YYYY-MM-DD
	Bars []Bar
}

// DayHLC is the aggregated high, low and last close of one calendar date.
type DayHLC struct {
	Date  string
	High  float64
	Low   float64
	Close float64
}
