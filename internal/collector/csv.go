package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/model"
)

// baseColumns names the columns of a headerless MetaTrader export.
var baseColumns = []string{"Time", "Open", "High", "Low", "Close", "Volume"}

// maxColumns is the number of leading columns read from each row; the rest are ignored.
const maxColumns = 6

// CSVSource loads bars from a delimited text file.
type CSVSource struct {
	Path      string
	Separator string
	Columns   Columns
}

// NewCSVSource creates a CSVSource. The two-character escape `\t` is accepted for a tab.
func NewCSVSource(path, sep string, cols Columns) *CSVSource {
	return &CSVSource{Path: path, Separator: NormalizeSeparator(sep), Columns: cols}
}

func (s *CSVSource) Name() string { return "csv" }

// NormalizeSeparator turns the escaped forms `\t` and `tab` into a tab character.
func NormalizeSeparator(sep string) string {
	switch sep {
	case `\t`, "tab", "TAB":
		return "\t"
	case "":
		return "\t"
	}
	return sep
}

// LoadBars reads the whole file. The first row is a header unless its second field is a
// number.
func (s *CSVSource) LoadBars(ctx context.Context) ([]model.Bar, error) {
	sep, size := utf8.DecodeRuneInString(s.Separator)
	if size == 0 || size != len(s.Separator) {
		return nil, fmt.Errorf("%w: separator must be a single character, got %q", ErrInput, s.Separator)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: file does not exist: %s", ErrInput, s.Path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrInput, s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is empty", ErrInput, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInput, s.Path, err)
	}

	hasHeader := IsHeader(first)
	names := columnNames(first, hasHeader)
	idx, err := resolveColumns(names, hasHeader, s.Columns)
	if err != nil {
		return nil, err
	}
	logger.Debugf("csv %s: header=%v columns=%v", s.Path, hasHeader, names)

	var bars []model.Bar
	if !hasHeader {
		line, _ := r.FieldPos(0)
		b, err := parseRow(first, idx, line)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}

	for n := 1; ; n++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// *csv.ParseError carries its own line number
			return nil, fmt.Errorf("%w: %s: %v", ErrInput, s.Path, err)
		}
		line, _ := r.FieldPos(0)
		if n%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		b, err := parseRow(rec, idx, line)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// IsHeader reports whether the first row is a header: it is one unless its second
// field parses as a number.
func IsHeader(first []string) bool {
	if len(first) < 2 {
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(first[1]), 64)
	return err != nil
}

func columnNames(first []string, hasHeader bool) []string {
	n := len(first)
	if n > maxColumns {
		n = maxColumns
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		if hasHeader {
			names[i] = strings.TrimSpace(first[i])
		} else {
			names[i] = baseColumns[i]
		}
	}
	return names
}

type columnIndex struct {
	datetime, open, high, low, close int
	volume                           int // -1 when absent
}

// resolveColumns finds the mapped columns, ignoring case. A six-column file with a header
// falls back to the positional MetaTrader layout for names it does not contain.
func resolveColumns(names []string, hasHeader bool, cols Columns) (columnIndex, error) {
	positional := hasHeader && len(names) == maxColumns
	find := func(want string, pos int) int {
		for i, n := range names {
			if want != "" && strings.EqualFold(n, want) {
				return i
			}
		}
		if positional && pos >= 0 {
			return pos
		}
		return -1
	}

	idx := columnIndex{
		datetime: find(cols.Datetime, 0),
		open:     find(cols.Open, 1),
		high:     find(cols.High, 2),
		low:      find(cols.Low, 3),
		close:    find(cols.Close, 4),
		volume:   find(cols.Volume, 5),
	}

	var missing []string
	for _, c := range []struct {
		name string
		i    int
	}{
		{cols.Datetime, idx.datetime},
		{cols.Open, idx.open},
		{cols.High, idx.high},
		{cols.Low, idx.low},
		{cols.Close, idx.close},
	} {
		if c.i < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w(s): %s (have %s)", ErrMissingColumn,
			strings.Join(missing, ", "), strings.Join(names, ", "))
	}
	return idx, nil
}

func parseRow(rec []string, idx columnIndex, line int) (model.Bar, error) {
	field := func(i int) (string, error) {
		if i >= len(rec) {
			return "", fmt.Errorf("%w: line %d has %d fields", ErrInput, line, len(rec))
		}
		return strings.TrimSpace(rec[i]), nil
	}
	price := func(i int, what string) (float64, error) {
		v, err := field(i)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: bad %s %q", ErrInput, line, what, v)
		}
		return f, nil
	}

	ts, err := field(idx.datetime)
	if err != nil {
		return model.Bar{}, err
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return model.Bar{}, fmt.Errorf("line %d: %w", line, err)
	}

	var b model.Bar
	b.Time = t
	if b.Open, err = price(idx.open, "open"); err != nil {
		return b, err
	}
	if b.High, err = price(idx.high, "high"); err != nil {
		return b, err
	}
	if b.Low, err = price(idx.low, "low"); err != nil {
		return b, err
	}
	if b.Close, err = price(idx.close, "close"); err != nil {
		return b, err
	}
	if idx.volume >= 0 && idx.volume < len(rec) {
		// volume is informational only
		b.Volume, _ = strconv.ParseFloat(strings.TrimSpace(rec[idx.volume]), 64)
	}
	return b, nil
}
