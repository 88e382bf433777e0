package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"candleboard/internal/adapters/ai"
	"candleboard/internal/adapters/config"
	"candleboard/internal/adapters/dataset"
	"candleboard/internal/adapters/errors/noop"
	"candleboard/internal/adapters/errors/sentry"
	"candleboard/internal/api"
	"candleboard/internal/api/health"
	"candleboard/internal/metrics"
	"candleboard/internal/services/analyst"
	"candleboard/internal/session"
	"candleboard/pkg/errors"
	"candleboard/pkg/logger"
)

func main() {
	// Load configuration. A missing GEMINI_API_KEY fails here: the
	// analyst cannot run without its credential.
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Load the dataset once; it is read-only for the rest of the process.
	table, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	metrics.DatasetRows.Set(float64(table.Len()))

	// Build the chat provider and the analyst over the full table.
	provider, err := ai.NewProvider(ai.FactoryConfig{
		GeminiKey:       cfg.AI.GeminiKey,
		OpenAIKey:       cfg.AI.OpenAIKey,
		DefaultProvider: ai.ProviderName(cfg.AI.DefaultProvider),
		RequestTimeout:  cfg.AI.RequestTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to build AI provider: %v", err)
	}
	analystSvc := analyst.NewService(provider, table, cfg.AI.Model, cfg.Dataset.Symbol, cfg.AI.MinDelay)

	sessions := session.NewStore()

	healthHandler := health.New(log, cfg.App.Name, cfg.App.Version, table.Len(), cfg.AI.GeminiKey != "")

	server := api.NewServer(
		api.ServerConfig{
			Port:        cfg.Server.Port,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
		},
		api.Deps{
			Table:         table,
			Symbol:        cfg.Dataset.Symbol,
			Analyst:       analystSvc,
			Sessions:      sessions,
			FrameInterval: cfg.Animation.FrameInterval,
			Health:        healthHandler,
		},
		log,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("Server shutdown: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
