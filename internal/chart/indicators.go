package chart

import (
	"time"

	talib "github.com/markcheno/go-talib"

	"candleboard/internal/domain/series"
	"candleboard/pkg/errors"
)

// Overlay carries indicator series aligned with the full candle axis,
// served next to the chart for the zoom/scrub view. Leading entries are
// zero until the lookback period is filled, as go-talib emits them.
type Overlay struct {
	Period int         `json:"period"`
	X      []time.Time `json:"x"`
	SMA    []float64   `json:"sma"`
	RSI    []float64   `json:"rsi"`
}

// Overlays computes moving-average and RSI series over closing prices.
func Overlays(t series.Table, period int) (*Overlay, error) {
	if period < 2 || period >= t.Len() {
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"indicator period %d out of range [2, %d)", period, t.Len())
	}

	closes := make([]float64, t.Len())
	xs := make([]time.Time, t.Len())
	for i, row := range t {
		closes[i] = row.Close
		xs[i] = row.Timestamp
	}

	return &Overlay{
		Period: period,
		X:      xs,
		SMA:    talib.Sma(closes, period),
		RSI:    talib.Rsi(closes, period),
	}, nil
}
