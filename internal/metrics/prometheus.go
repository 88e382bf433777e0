package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Chart metrics
	AnimationFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "candleboard_animation_frames_total",
			Help: "Total number of animation frames built",
		},
	)

	FrameBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candleboard_frame_build_duration_seconds",
			Help:    "Frame derivation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	DatasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "candleboard_dataset_rows",
			Help: "Number of rows in the loaded dataset",
		},
	)

	// Analyst metrics
	AnalystCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candleboard_analyst_calls_total",
			Help: "Total number of analyst queries",
		},
		[]string{"provider", "status"}, // status: success|error|rate_limited
	)

	AnalystLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "candleboard_analyst_latency_seconds",
			Help:    "Analyst query latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	// Transport metrics
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "candleboard_ws_connections",
			Help: "Current number of chart WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		AnimationFrames,
		FrameBuildDuration,
		DatasetRows,
		AnalystCalls,
		AnalystLatency,
		WSConnections,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFrameBuild records one frame derivation.
func ObserveFrameBuild(start time.Time) {
	FrameBuildDuration.Observe(time.Since(start).Seconds())
}
