package ai

import (
	"time"

	"candleboard/pkg/errors"
)

// FactoryConfig selects and configures the chat provider.
type FactoryConfig struct {
	GeminiKey       string
	OpenAIKey       string
	DefaultProvider ProviderName
	RequestTimeout  time.Duration
}

// NewProvider builds the configured chat provider. The Gemini key is
// required for the default provider; a missing key for the selected
// provider is a construction-time error, not a call-time surprise.
func NewProvider(cfg FactoryConfig) (ChatProvider, error) {
	switch cfg.DefaultProvider {
	case ProviderNameGoogle, "":
		if cfg.GeminiKey == "" {
			return nil, errors.Wrap(errors.ErrNotConfigured, "GEMINI_API_KEY is required")
		}
		return NewGeminiProvider(cfg.GeminiKey, cfg.RequestTimeout), nil
	case ProviderNameOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.Wrap(errors.ErrNotConfigured, "OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.RequestTimeout), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown AI provider %q", cfg.DefaultProvider)
	}
}
