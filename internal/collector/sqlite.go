package collector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/model"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource loads bars from a table of a SQLite database.
type SQLiteSource struct {
	Path    string
	Table   string
	Columns Columns
}

// NewSQLiteSource creates a SQLiteSource.
func NewSQLiteSource(path, table string, cols Columns) *SQLiteSource {
	return &SQLiteSource{Path: path, Table: table, Columns: cols}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

// query builds the SELECT for the configured table and columns.
func (s *SQLiteSource) query() (string, bool, error) {
	idents := []string{s.Table, s.Columns.Datetime, s.Columns.Open, s.Columns.High, s.Columns.Low, s.Columns.Close}
	for _, id := range idents {
		if !identRe.MatchString(id) {
			return "", false, fmt.Errorf("%w: invalid sqlite identifier %q", ErrInput, id)
		}
	}
	withVolume := identRe.MatchString(s.Columns.Volume)

	q := fmt.Sprintf(`SELECT "%s", "%s", "%s", "%s", "%s"`,
		s.Columns.Datetime, s.Columns.Open, s.Columns.High, s.Columns.Low, s.Columns.Close)
	if withVolume {
		q += fmt.Sprintf(`, "%s"`, s.Columns.Volume)
	}
	q += fmt.Sprintf(` FROM "%s" ORDER BY "%s"`, s.Table, s.Columns.Datetime)
	return q, withVolume, nil
}

// LoadBars reads every row of the table. The timestamp column may hold text, unix
// seconds or unix milliseconds.
func (s *SQLiteSource) LoadBars(ctx context.Context) ([]model.Bar, error) {
	q, withVolume, err := s.query()
	if err != nil {
		return nil, err
	}

	// the driver would create a missing database file
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: file does not exist: %s", ErrInput, s.Path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrInput, s.Path, err)
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrInput, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		if withVolume {
			// the volume column is optional
			logger.Debugf("sqlite query with volume failed, retrying without: %v", err)
			s2 := *s
			s2.Columns.Volume = ""
			return s2.LoadBars(ctx)
		}
		return nil, fmt.Errorf("%w: query %s: %v", ErrInput, s.Table, err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var (
			raw    any
			b      model.Bar
			volume sql.NullFloat64
		)
		dest := []any{&raw, &b.Open, &b.High, &b.Low, &b.Close}
		if withVolume {
			dest = append(dest, &volume)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan row %d: %v", ErrInput, len(bars)+1, err)
		}
		t, err := sqliteTime(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(bars)+1, err)
		}
		b.Time = t
		b.Volume = volume.Float64
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInput, s.Table, err)
	}
	return bars, nil
}

func sqliteTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case int64:
		return unixTime(x), nil
	case float64:
		return unixTime(int64(x)), nil
	case string:
		return ParseTimestamp(x)
	case []byte:
		return ParseTimestamp(string(x))
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported value %v (%T)", ErrTimestamp, v, v)
	}
}

// unixTime accepts seconds or milliseconds since the epoch.
func unixTime(n int64) time.Time {
	if n > 1e11 || n < -1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
