package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleboard/pkg/errors"
)

func TestOverlays_SeriesAlignWithAxis(t *testing.T) {
	table := testTable(40)

	overlay, err := Overlays(table, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, overlay.Period)
	assert.Len(t, overlay.X, table.Len())
	assert.Len(t, overlay.SMA, table.Len())
	assert.Len(t, overlay.RSI, table.Len())

	// Closes rise by 1 per row, so the filled SMA trails the close by
	// half the window.
	last := overlay.SMA[len(overlay.SMA)-1]
	assert.InDelta(t, table[table.Len()-1].Close-4.5, last, 1e-9)
}

func TestOverlays_PeriodBounds(t *testing.T) {
	table := testTable(20)

	for _, period := range []int{0, 1, 20, 50} {
		_, err := Overlays(table, period)
		require.Error(t, err, "period %d", period)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	}
}
