package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleboard/internal/domain/series"
	"candleboard/pkg/errors"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const header = "timestamp,open,high,low,close,volume,direction,Support,Resistance\n"

func TestLoad_ParsesAndSorts(t *testing.T) {
	// Rows deliberately out of order; loader must sort ascending.
	path := writeDataset(t, header+
		"2023-01-05,101,106,100,103,2000,SHORT,\"[99.5, 100.1]\",[]\n"+
		"2023-01-03,100,105,99,102,1000,LONG,[],\"[104, 106]\"\n")

	table, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), table[0].Timestamp)
	assert.Equal(t, 100.0, table[0].Open)
	assert.Equal(t, 105.0, table[0].High)
	assert.Equal(t, 99.0, table[0].Low)
	assert.Equal(t, 102.0, table[0].Close)
	assert.Equal(t, int64(1000), table[0].Volume)
	assert.Equal(t, series.DirectionLong, table[0].Direction)
	assert.Empty(t, table[0].Support)
	assert.Equal(t, []float64{104, 106}, table[0].Resistance)

	assert.Equal(t, series.DirectionShort, table[1].Direction)
	assert.Equal(t, []float64{99.5, 100.1}, table[1].Support)
	assert.Empty(t, table[1].Resistance)
}

func TestLoad_StableSortKeepsTieOrder(t *testing.T) {
	path := writeDataset(t, header+
		"2023-01-03,1,2,1,1.5,10,,[],[]\n"+
		"2023-01-03,3,4,3,3.5,10,,[],[]\n")

	table, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 1.0, table[0].Open)
	assert.Equal(t, 3.0, table[1].Open)
}

func TestLoad_UnparsableTimestampFails(t *testing.T) {
	path := writeDataset(t, header+
		"not-a-date,100,105,99,102,1000,LONG,[],[]\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataFormat))
}

func TestLoad_MissingColumnFails(t *testing.T) {
	path := writeDataset(t, "timestamp,open,high,low,close,volume,direction,Support\n"+
		"2023-01-03,100,105,99,102,1000,LONG,[]\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataFormat))
}

func TestLoad_EmptyDatasetFails(t *testing.T) {
	path := writeDataset(t, header)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDatasetEmpty))
}

func TestLoad_UnknownDirectionIsNeutral(t *testing.T) {
	path := writeDataset(t, header+
		"2023-01-03,100,105,99,102,1000,sideways,[],[]\n")

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, series.DirectionNone, table[0].Direction)
}

func TestParseLevels(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []float64
	}{
		{"two levels", "[10.5, 11.2]", []float64{10.5, 11.2}},
		{"no spaces", "[10.5,11.2]", []float64{10.5, 11.2}},
		{"single level", "[100]", []float64{100}},
		{"empty brackets", "[]", nil},
		{"empty cell", "", nil},
		{"whitespace cell", "   ", nil},
		{"not a list", "10.5", nil},
		{"malformed element drops whole cell", "[10.5, abc]", nil},
		{"unterminated", "[10.5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevels(tt.raw))
		})
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	for _, raw := range []string{
		"2023-01-03",
		"2023-01-03 09:30:00",
		"2023-01-03 09:30:00-05:00",
		"2023-01-03T09:30:00Z",
	} {
		_, err := parseTimestamp(raw)
		assert.NoError(t, err, raw)
	}
}
