// Package chart derives renderable chart data from a loaded table: the
// candlestick arrays, the support/resistance band polygons, and the
// direction marker groups that make up one animation frame.
package chart

import (
	"time"

	"candleboard/internal/domain/series"
	"candleboard/pkg/errors"
)

// MinPrefix is the smallest prefix length the animation starts from.
// Tables shorter than this animate from their full length.
const MinPrefix = 10

// Marker rendering metadata, matching the dashboard glyphs.
const (
	SymbolTriangleUp   = "triangle-up"
	SymbolTriangleDown = "triangle-down"
	SymbolCircle       = "circle"

	ColorLong    = "green"
	ColorShort   = "red"
	ColorNeutral = "yellow"

	FillSupport    = "rgba(0,255,0,0.2)"
	FillResistance = "rgba(255,0,0,0.2)"
)

// Offsets placing direction markers clear of the candle body.
const (
	longMarkerFactor  = 0.99 // below the low
	shortMarkerFactor = 1.01 // above the high
)

// CandleSeries holds the aligned candlestick arrays for a table prefix.
type CandleSeries struct {
	X     []time.Time `json:"x"`
	Open  []float64   `json:"open"`
	High  []float64   `json:"high"`
	Low   []float64   `json:"low"`
	Close []float64   `json:"close"`
}

// BandTrace is a closed polygon outlining a price band. X runs forward
// through the band rows and then backward; Y pairs upper bounds with the
// forward half and lower bounds with the reversed half.
type BandTrace struct {
	X         []time.Time `json:"x"`
	Y         []float64   `json:"y"`
	FillColor string      `json:"fill_color"`
}

// MarkerGroup is one set of direction markers sharing a glyph.
type MarkerGroup struct {
	X      []time.Time `json:"x"`
	Y      []float64   `json:"y"`
	Symbol string      `json:"symbol"`
	Color  string      `json:"color"`
}

// Markers partitions the prefix rows by trading direction.
type Markers struct {
	Long    MarkerGroup `json:"long"`
	Short   MarkerGroup `json:"short"`
	Neutral MarkerGroup `json:"neutral"`
}

// Frame is one animation step worth of derived chart data. It is a pure
// function of (table, prefix length); support or resistance is nil when no
// row in the prefix carries levels for that band.
type Frame struct {
	Index      int          `json:"index"`
	Candles    CandleSeries `json:"candles"`
	Support    *BandTrace   `json:"support,omitempty"`
	Resistance *BandTrace   `json:"resistance,omitempty"`
	Markers    Markers      `json:"markers"`
}

// MinPrefixFor returns the first animated prefix length for a table.
func MinPrefixFor(t series.Table) int {
	if t.Len() < MinPrefix {
		return t.Len()
	}
	return MinPrefix
}

// Build derives the frame for the first i rows of the table.
// i must lie in [MinPrefixFor(t), t.Len()].
func Build(t series.Table, i int) (*Frame, error) {
	if i < MinPrefixFor(t) || i > t.Len() {
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"frame index %d out of range [%d, %d]", i, MinPrefixFor(t), t.Len())
	}

	prefix := t.Prefix(i)

	frame := &Frame{
		Index:      i,
		Candles:    candles(prefix),
		Support:    band(prefix, supportLevels, FillSupport),
		Resistance: band(prefix, resistanceLevels, FillResistance),
		Markers:    markers(prefix),
	}
	return frame, nil
}

// Full derives the frame covering the whole table.
func Full(t series.Table) (*Frame, error) {
	return Build(t, t.Len())
}

func candles(prefix series.Table) CandleSeries {
	s := CandleSeries{
		X:     make([]time.Time, len(prefix)),
		Open:  make([]float64, len(prefix)),
		High:  make([]float64, len(prefix)),
		Low:   make([]float64, len(prefix)),
		Close: make([]float64, len(prefix)),
	}
	for i, row := range prefix {
		s.X[i] = row.Timestamp
		s.Open[i] = row.Open
		s.High[i] = row.High
		s.Low[i] = row.Low
		s.Close[i] = row.Close
	}
	return s
}

func supportLevels(r series.Row) []float64    { return r.Support }
func resistanceLevels(r series.Row) []float64 { return r.Resistance }

// band builds the closed polygon for one band. Rows with no levels are
// skipped; if every row is skipped the band is absent, not degenerate.
func band(prefix series.Table, levels func(series.Row) []float64, fill string) *BandTrace {
	var (
		xs    []time.Time
		upper []float64
		lower []float64
	)
	for _, row := range prefix {
		ls := levels(row)
		if len(ls) == 0 {
			continue
		}
		lo, hi := minMax(ls)
		xs = append(xs, row.Timestamp)
		upper = append(upper, hi)
		lower = append(lower, lo)
	}
	if len(xs) == 0 {
		return nil
	}

	k := len(xs)
	trace := &BandTrace{
		X:         make([]time.Time, 0, 2*k),
		Y:         make([]float64, 0, 2*k),
		FillColor: fill,
	}
	trace.X = append(trace.X, xs...)
	trace.Y = append(trace.Y, upper...)
	for j := k - 1; j >= 0; j-- {
		trace.X = append(trace.X, xs[j])
		trace.Y = append(trace.Y, lower[j])
	}
	return trace
}

// minMax returns the smallest and largest of a non-empty level list.
// A single-element list yields min == max: a zero-height band segment.
func minMax(levels []float64) (lo, hi float64) {
	lo, hi = levels[0], levels[0]
	for _, v := range levels[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func markers(prefix series.Table) Markers {
	m := Markers{
		Long:    MarkerGroup{Symbol: SymbolTriangleUp, Color: ColorLong},
		Short:   MarkerGroup{Symbol: SymbolTriangleDown, Color: ColorShort},
		Neutral: MarkerGroup{Symbol: SymbolCircle, Color: ColorNeutral},
	}
	for _, row := range prefix {
		switch row.Direction {
		case series.DirectionLong:
			m.Long.X = append(m.Long.X, row.Timestamp)
			m.Long.Y = append(m.Long.Y, row.Low*longMarkerFactor)
		case series.DirectionShort:
			m.Short.X = append(m.Short.X, row.Timestamp)
			m.Short.Y = append(m.Short.Y, row.High*shortMarkerFactor)
		default:
			m.Neutral.X = append(m.Neutral.X, row.Timestamp)
			m.Neutral.Y = append(m.Neutral.Y, row.Close)
		}
	}
	return m
}
