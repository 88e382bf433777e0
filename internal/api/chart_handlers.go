package api

import (
	"net/http"
	"strconv"
	"time"

	"candleboard/internal/chart"
	"candleboard/internal/domain/series"
	"candleboard/internal/metrics"
	"candleboard/pkg/errors"
	"candleboard/pkg/logger"
)

const defaultIndicatorPeriod = 20

// ChartHandler serves derived chart data for the static and zoom views.
type ChartHandler struct {
	table  series.Table
	symbol string
	log    *logger.Logger
}

// NewChartHandler creates a chart handler over an immutable table.
func NewChartHandler(table series.Table, symbol string, log *logger.Logger) *ChartHandler {
	return &ChartHandler{
		table:  table,
		symbol: symbol,
		log:    log.With("handler", "chart"),
	}
}

// HandleMeta returns the table shape and animation bounds.
func (h *ChartHandler) HandleMeta(w http.ResponseWriter, r *http.Request) {
	first, last := h.table.TimeRange()
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"symbol":     h.symbol,
		"rows":       h.table.Len(),
		"min_prefix": chart.MinPrefixFor(h.table),
		"start":      first,
		"end":        last,
	})
}

// HandleFrame returns the frame for ?index=i.
func (h *ChartHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, h.log, errors.Wrapf(errors.ErrInvalidInput, "index %q", raw))
		return
	}

	start := time.Now()
	frame, err := chart.Build(h.table, index)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	metrics.ObserveFrameBuild(start)
	metrics.AnimationFrames.Inc()

	writeJSON(w, h.log, http.StatusOK, frame)
}

// HandleFull returns the frame covering the whole table.
func (h *ChartHandler) HandleFull(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	frame, err := chart.Full(h.table)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	metrics.ObserveFrameBuild(start)

	writeJSON(w, h.log, http.StatusOK, frame)
}

// HandleIndicators returns SMA/RSI overlays for ?period=p.
func (h *ChartHandler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	period := defaultIndicatorPeriod
	if raw := r.URL.Query().Get("period"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, h.log, errors.Wrapf(errors.ErrInvalidInput, "period %q", raw))
			return
		}
		period = p
	}

	overlay, err := chart.Overlays(h.table, period)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, overlay)
}
