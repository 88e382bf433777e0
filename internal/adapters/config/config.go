package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"candleboard/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Dataset       DatasetConfig
	AI            AIConfig
	Animation     AnimationConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"candleboard"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type ServerConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

type DatasetConfig struct {
	// Path to the OHLCV dataset with direction and support/resistance columns
	Path   string `envconfig:"DATASET_PATH" default:"TSLA_data - Sheet1.csv"`
	Symbol string `envconfig:"DATASET_SYMBOL" default:"TSLA"`
}

type AIConfig struct {
	// The Gemini key is the one required credential: without it the
	// analyst cannot answer questions and startup fails.
	GeminiKey       string        `envconfig:"GEMINI_API_KEY" required:"true"`
	OpenAIKey       string        `envconfig:"OPENAI_API_KEY"`
	DefaultProvider string        `envconfig:"DEFAULT_AI_PROVIDER" default:"google"`
	Model           string        `envconfig:"AI_MODEL" default:"gemini-1.5-flash"`
	RequestTimeout  time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"60s"`
	// Minimum delay enforced between consecutive analyst calls
	MinDelay time.Duration `envconfig:"AI_MIN_DELAY" default:"1s"`
}

type AnimationConfig struct {
	// How often a playing animation advances one frame
	FrameInterval time.Duration `envconfig:"ANIMATION_FRAME_INTERVAL" default:"50ms"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
