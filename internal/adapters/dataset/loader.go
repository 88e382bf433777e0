// Package dataset loads the OHLCV dataset consumed by the chart and the
// analyst. The input is a CSV export with per-row direction and watched
// support/resistance price levels.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"candleboard/internal/domain/series"
	"candleboard/pkg/errors"
	"candleboard/pkg/logger"
)

// Column names expected in the CSV header.
const (
	colTimestamp  = "timestamp"
	colOpen       = "open"
	colHigh       = "high"
	colLow        = "low"
	colClose      = "close"
	colVolume     = "volume"
	colDirection  = "direction"
	colSupport    = "Support"
	colResistance = "Resistance"
)

// timestampLayouts are tried in order when parsing the timestamp column.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Load reads the dataset at path and returns a table sorted ascending by
// timestamp. A structurally invalid file (missing columns, unparsable
// timestamp or price) fails with ErrDataFormat; malformed support or
// resistance cells degrade to an empty level list instead.
func Load(path string) (series.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDataFormat, "open dataset %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := read(f)
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("Dataset loaded", "path", path, "rows", table.Len())
	return table, nil
}

// read parses CSV content into a sorted table.
func read(r io.Reader) (series.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // validated against the header below

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDataFormat, "read header: %v", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var table series.Table
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.ErrDataFormat, "line %d: %v", line, err)
		}
		if len(record) < len(header) {
			return nil, errors.Wrapf(errors.ErrDataFormat, "line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		row, err := parseRow(record, idx)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		table = append(table, row)
	}

	if table.Len() == 0 {
		return nil, errors.ErrDatasetEmpty
	}

	// Stable sort keeps file order for equal timestamps.
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Timestamp.Before(table[j].Timestamp)
	})

	return table, nil
}

// columns maps each expected column name to its header position.
type columns struct {
	timestamp, open, high, low, close, volume, direction, support, resistance int
}

func columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(name)] = i
	}

	idx := columns{}
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{colTimestamp, &idx.timestamp},
		{colOpen, &idx.open},
		{colHigh, &idx.high},
		{colLow, &idx.low},
		{colClose, &idx.close},
		{colVolume, &idx.volume},
		{colDirection, &idx.direction},
		{colSupport, &idx.support},
		{colResistance, &idx.resistance},
	} {
		i, ok := pos[want.name]
		if !ok {
			return columns{}, errors.Wrapf(errors.ErrDataFormat, "missing column %q", want.name)
		}
		*want.dst = i
	}
	return idx, nil
}

func parseRow(record []string, idx columns) (series.Row, error) {
	ts, err := parseTimestamp(record[idx.timestamp])
	if err != nil {
		return series.Row{}, err
	}

	prices := [4]float64{}
	for i, col := range []int{idx.open, idx.high, idx.low, idx.close} {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil {
			return series.Row{}, errors.Wrapf(errors.ErrDataFormat, "price %q: %v", record[col], err)
		}
		prices[i] = v
	}

	volume, err := parseVolume(record[idx.volume])
	if err != nil {
		return series.Row{}, err
	}

	return series.Row{
		Timestamp:  ts,
		Open:       prices[0],
		High:       prices[1],
		Low:        prices[2],
		Close:      prices[3],
		Volume:     volume,
		Direction:  series.ParseDirection(strings.TrimSpace(record[idx.direction])),
		Support:    ParseLevels(record[idx.support]),
		Resistance: ParseLevels(record[idx.resistance]),
	}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.Wrapf(errors.ErrDataFormat, "unparsable timestamp %q", raw)
}

// parseVolume accepts plain integers as well as scientific notation that
// spreadsheet exports sometimes produce.
func parseVolume(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, errors.Wrapf(errors.ErrDataFormat, "volume %q", raw)
	}
	return int64(f), nil
}

// ParseLevels parses a bracketed list of price levels, e.g. "[10.5, 11.2]".
// An empty, missing, or malformed cell yields an empty list: a bad cell
// degrades to "no band at this row" and never fails the load.
func ParseLevels(raw string) []float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil
	}
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return nil
	}

	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return nil
	}

	parts := strings.Split(inner, ",")
	levels := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			// Whole cell is discarded, matching the lenient
			// list-literal parse of the source data pipeline.
			return nil
		}
		levels = append(levels, v)
	}
	return levels
}
