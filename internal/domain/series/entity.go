package series

import "time"

// Direction is the trading bias recorded for one period.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	// DirectionNone covers an absent or unrecognized direction cell.
	DirectionNone Direction = ""
)

// ParseDirection maps a raw cell value to a Direction. Anything other
// than the two known biases is treated as neutral.
func ParseDirection(raw string) Direction {
	switch raw {
	case string(DirectionLong):
		return DirectionLong
	case string(DirectionShort):
		return DirectionShort
	default:
		return DirectionNone
	}
}

// Row is one observation of the loaded dataset.
type Row struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	Direction Direction

	// Watched price levels for the period. Either may be empty, which
	// means the row contributes nothing to that band.
	Support    []float64
	Resistance []float64
}

// Table is an ordered sequence of rows, non-decreasing by timestamp
// after load-time sorting. It is immutable for the lifetime of a session.
type Table []Row

// Len returns the number of rows.
func (t Table) Len() int { return len(t) }

// Prefix returns the first n rows. The slice shares backing storage with
// the table; callers must not mutate it.
func (t Table) Prefix(n int) Table {
	if n > len(t) {
		n = len(t)
	}
	if n < 0 {
		n = 0
	}
	return t[:n]
}

// TimeRange returns the first and last timestamps of the table.
// Both are zero when the table is empty.
func (t Table) TimeRange() (first, last time.Time) {
	if len(t) == 0 {
		return
	}
	return t[0].Timestamp, t[len(t)-1].Timestamp
}
