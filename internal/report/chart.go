package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Kroner-bit/pivot-stat/internal/stats"
)

// RenderBarChart saves a grouped bar chart of lower-first vs upper-first percentages
// per level.
func RenderBarChart(rows []stats.Row, path string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}

	lower := make(plotter.Values, len(rows))
	upper := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		lower[i] = r.LowerPct
		upper[i] = r.UpperPct
		names[i] = string(r.Level)
	}

	p := plot.New()
	p.Title.Text = "First neighbour reached after a pivot touch"
	p.Y.Label.Text = "% of touches"
	p.Y.Min = 0
	p.Y.Max = 100

	w := vg.Points(14)
	lowerBars, err := plotter.NewBarChart(lower, w)
	if err != nil {
		return fmt.Errorf("lower bars: %w", err)
	}
	lowerBars.LineStyle.Width = vg.Length(0)
	lowerBars.Color = plotutil.Color(0)
	lowerBars.Offset = -w / 2

	upperBars, err := plotter.NewBarChart(upper, w)
	if err != nil {
		return fmt.Errorf("upper bars: %w", err)
	}
	upperBars.LineStyle.Width = vg.Length(0)
	upperBars.Color = plotutil.Color(1)
	upperBars.Offset = w / 2

	p.Add(lowerBars, upperBars, plotter.NewGrid())
	p.Legend.Add("Lower first", lowerBars)
	p.Legend.Add("Upper first", upperBars)
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save bar chart %s: %w", path, err)
	}
	return nil
}
