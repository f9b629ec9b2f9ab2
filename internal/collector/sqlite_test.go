package collector

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBarsDB(t *testing.T, schema string, rows ...[]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(schema)
	require.NoError(t, err)
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO bars VALUES (?,?,?,?,?,?)`, r...)
		require.NoError(t, err)
	}
	return path
}

func TestSQLiteSource_TextTimestamps(t *testing.T) {
	path := newBarsDB(t,
		`CREATE TABLE bars (ts TEXT, open REAL, high REAL, low REAL, close REAL, volume REAL)`,
		[]any{"2024-01-02 00:01:00", 2.0, 3.0, 1.5, 2.5, 7.0},
		[]any{"2024-01-02 00:00:00", 1.0, 2.0, 0.5, 1.5, nil},
	)
	cols := Columns{Datetime: "ts", Open: "open", High: "high", Low: "low", Close: "close", Volume: "volume"}

	bars, err := NewSQLiteSource(path, "bars", cols).LoadBars(context.Background())
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, 0.0, bars[0].Volume)
	assert.Equal(t, 2.5, bars[1].Close)
	assert.Equal(t, 7.0, bars[1].Volume)
}

func TestSQLiteSource_UnixTimestampsWithoutVolume(t *testing.T) {
	path := newBarsDB(t,
		`CREATE TABLE bars (t INTEGER, o REAL, h REAL, l REAL, c REAL, extra TEXT)`,
		[]any{int64(1704153600), 1.0, 2.0, 0.5, 1.5, "x"},
		[]any{int64(1704153660000), 1.5, 2.5, 1.0, 2.0, "y"},
	)
	cols := Columns{Datetime: "t", Open: "o", High: "h", Low: "l", Close: "c", Volume: "Volume"}

	bars, err := NewSQLiteSource(path, "bars", cols).LoadBars(context.Background())
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC), bars[1].Time)
}

func TestSQLiteSource_Errors(t *testing.T) {
	path := newBarsDB(t, `CREATE TABLE bars (ts TEXT, open REAL, high REAL, low REAL, close REAL, volume REAL)`)

	_, err := NewSQLiteSource(path, "bars; DROP TABLE bars", DefaultColumns()).LoadBars(context.Background())
	assert.ErrorIs(t, err, ErrInput)

	_, err = NewSQLiteSource(path, "missing", DefaultColumns()).LoadBars(context.Background())
	assert.ErrorIs(t, err, ErrInput)
}

func TestSQLiteSource_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.db")

	_, err := NewSQLiteSource(path, "bars", DefaultColumns()).LoadBars(context.Background())
	require.ErrorIs(t, err, ErrInput)
	assert.Contains(t, err.Error(), "file does not exist")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "database file was created")
}
