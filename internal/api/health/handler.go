package health

import (
	"encoding/json"
	"net/http"
	"time"

	"candleboard/pkg/logger"
)

// Handler provides health check endpoints
type Handler struct {
	log          *logger.Logger
	startTime    time.Time
	serviceName  string
	version      string
	datasetRows  int
	aiConfigured bool
}

// New creates a new health check handler
func New(log *logger.Logger, serviceName, version string, datasetRows int, aiConfigured bool) *Handler {
	return &Handler{
		log:          log,
		startTime:    time.Now(),
		serviceName:  serviceName,
		version:      version,
		datasetRows:  datasetRows,
		aiConfigured: aiConfigured,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic.
// The dataset and the analyst credential are both load-once state, so
// readiness is stable after startup.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.respond(w)
}

// HandleHealth returns the full health report
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w)
}

func (h *Handler) respond(w http.ResponseWriter) {
	checks := map[string]ComponentHealth{
		"dataset": h.checkDataset(),
		"analyst": h.checkAnalyst(),
	}

	allHealthy := true
	for _, c := range checks {
		if c.Status != "healthy" {
			allHealthy = false
		}
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warnw("Health check failed", "checks", checks)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(status)
}

func (h *Handler) checkDataset() ComponentHealth {
	if h.datasetRows == 0 {
		return ComponentHealth{Status: "unhealthy", Detail: "no rows loaded"}
	}
	return ComponentHealth{Status: "healthy"}
}

func (h *Handler) checkAnalyst() ComponentHealth {
	if !h.aiConfigured {
		return ComponentHealth{Status: "unhealthy", Detail: "AI credential missing"}
	}
	return ComponentHealth{Status: "healthy"}
}
