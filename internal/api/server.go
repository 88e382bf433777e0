// Package api exposes the dashboard surface over HTTP: chart data as
// JSON, the animation over a WebSocket, and the analyst as a
// question/answer endpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"candleboard/internal/api/health"
	"candleboard/internal/domain/series"
	"candleboard/internal/metrics"
	"candleboard/internal/services/analyst"
	"candleboard/internal/session"
	"candleboard/pkg/errors"
	"candleboard/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Deps are the constructed services the handlers work against.
type Deps struct {
	Table         series.Table
	Symbol        string
	Analyst       *analyst.Service
	Sessions      *session.Store
	FrameInterval time.Duration
	Health        *health.Handler
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures HTTP server with all routes
func NewServer(cfg ServerConfig, deps Deps, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("/health", deps.Health.HandleHealth)
	mux.HandleFunc("/ready", deps.Health.HandleReadiness)
	mux.HandleFunc("/live", deps.Health.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Chart data
	chartHandler := NewChartHandler(deps.Table, deps.Symbol, log)
	mux.HandleFunc("/api/chart/meta", chartHandler.HandleMeta)
	mux.HandleFunc("/api/chart/frame", chartHandler.HandleFrame)
	mux.HandleFunc("/api/chart/full", chartHandler.HandleFull)
	mux.HandleFunc("/api/chart/indicators", chartHandler.HandleIndicators)

	// Animation stream
	wsHandler := NewWSHandler(deps.Table, deps.FrameInterval, log)
	mux.HandleFunc("/ws/chart", wsHandler.HandleChart)

	// Analyst
	askHandler := NewAskHandler(deps.Analyst, deps.Sessions, log)
	mux.HandleFunc("/api/ask", askHandler.HandleAsk)
	mux.HandleFunc("/api/ask/questions", askHandler.HandleQuestions)
	mux.HandleFunc("/api/ask/transcript", askHandler.HandleTranscript)

	// Root endpoint (service info)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // analyst calls block the response
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("HTTP server stopped")
	return nil
}
