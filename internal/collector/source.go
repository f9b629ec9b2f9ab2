package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kroner-bit/pivot-stat/internal/model"
)

// Source defines the interface for loading a historical bar series.
type Source interface {
	LoadBars(ctx context.Context) ([]model.Bar, error)
	Name() string
}

// Errors returned for unusable input. All of them wrap ErrInput.
var (
	ErrInput              = errors.New("input error")
	ErrMissingColumn      = fmt.Errorf("%w: missing required column", ErrInput)
	ErrTimestamp          = fmt.Errorf("%w: unparsable timestamp", ErrInput)
	ErrDuplicateTimestamp = fmt.Errorf("%w: duplicate timestamp", ErrInput)
)

// Columns maps the logical bar fields to column names in the input.
type Columns struct {
	Datetime string
	Open     string
	High     string
	Low      string
	Close    string
	Volume   string // optional
}

// DefaultColumns are the MetaTrader export names.
func DefaultColumns() Columns {
	return Columns{
		Datetime: "Time",
		Open:     "Open",
		High:     "High",
		Low:      "Low",
		Close:    "Close",
		Volume:   "Volume",
	}
}
