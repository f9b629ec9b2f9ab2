// Package report renders the aggregated first-direction statistics as a text table,
// a PNG table and a grouped bar chart.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Kroner-bit/pivot-stat/internal/session"
	"github.com/Kroner-bit/pivot-stat/internal/stats"
)

// ErrNoRows is returned by the image renderers when no level was ever touched.
var ErrNoRows = errors.New("no touched levels to render")

const tableTitle = "FIRST DIRECTION (which neighbour was reached first):"

var tableHeader = []string{"Pivot", "Samples", "Lower first%", "Upper first%", "Total%"}

// Percent formats a percentage with one decimal, rounding half away from zero.
func Percent(f float64) string {
	return strconv.FormatFloat(stats.Round1(f), 'f', 1, 64)
}

// cells returns the display values of a row in header order.
func cells(r stats.Row) []string {
	return []string{
		string(r.Level),
		humanize.Comma(int64(r.Count)),
		Percent(r.LowerPct),
		Percent(r.UpperPct),
		Percent(r.TotalPct),
	}
}

// FormatTable renders the rows as an aligned plain-text table.
func FormatTable(rows []stats.Row) string {
	var b strings.Builder
	b.WriteString(tableTitle + "\n")
	if len(rows) == 0 {
		b.WriteString("(no touch events)\n")
		return b.String()
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = len(h)
	}
	body := make([][]string, len(rows))
	for i, r := range rows {
		body[i] = cells(r)
		for j, c := range body[i] {
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
	}

	writeLine := func(vals []string) {
		for j, v := range vals {
			if j > 0 {
				b.WriteString(" | ")
			}
			if j == 0 {
				b.WriteString(fmt.Sprintf("%-*s", widths[j], v))
			} else {
				b.WriteString(fmt.Sprintf("%*s", widths[j], v))
			}
		}
		b.WriteString("\n")
	}

	writeLine(tableHeader)
	seps := make([]string, len(widths))
	for j, w := range widths {
		seps[j] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(seps, "-+-") + "\n")
	for _, vals := range body {
		writeLine(vals)
	}
	return b.String()
}

// FormatSummary renders the run counters shown under the table.
func FormatSummary(res *session.Result) string {
	var b strings.Builder
	if res.FirstDate != "" {
		b.WriteString(fmt.Sprintf("Period: %s .. %s\n", res.FirstDate, res.LastDate))
	}
	b.WriteString(fmt.Sprintf("Days processed: %s | scanned: %s | skipped (no previous date): %s\n",
		humanize.Comma(int64(res.Days)), humanize.Comma(int64(res.ScannedDays)),
		humanize.Comma(int64(res.SkippedDays))))
	b.WriteString(fmt.Sprintf("Touch events: %s\n", humanize.Comma(int64(res.Events))))
	return b.String()
}

// FormatReport is the table followed by the summary.
func FormatReport(res *session.Result) string {
	return FormatTable(res.Stats.Rows()) + "\n" + FormatSummary(res)
}
