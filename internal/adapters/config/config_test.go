package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "placeholder")
	os.Unsetenv("GEMINI_API_KEY")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "candleboard", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "TSLA_data - Sheet1.csv", cfg.Dataset.Path)
	assert.Equal(t, "TSLA", cfg.Dataset.Symbol)
	assert.Equal(t, "test-key", cfg.AI.GeminiKey)
	assert.Equal(t, "google", cfg.AI.DefaultProvider)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	assert.Equal(t, time.Second, cfg.AI.MinDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.Animation.FrameInterval)
	assert.False(t, cfg.ErrorTracking.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATASET_SYMBOL", "AAPL")
	t.Setenv("ANIMATION_FRAME_INTERVAL", "100ms")
	t.Setenv("AI_MODEL", "gemini-1.5-pro")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "AAPL", cfg.Dataset.Symbol)
	assert.Equal(t, 100*time.Millisecond, cfg.Animation.FrameInterval)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
}
