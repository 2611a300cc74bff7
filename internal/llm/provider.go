package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Supported provider identifiers.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Config selects and parameterizes a completion provider. BaseURL is
// overridable for tests and proxies; empty means the provider's public
// endpoint.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Provider is a text-completion backend. Complete sends a prompt and returns
// the model's raw text output.
type Provider interface {
	Name() string
	MaxPromptChars() int
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider validates cfg eagerly and builds the matching adapter. All
// validation failures come back as *ConfigError.
func NewProvider(cfg Config, logger *zap.Logger) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	switch cfg.Provider {
	case ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, &ConfigError{Reason: "Google API key is required"}
		}
		return newGoogleProvider(cfg, logger), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, &ConfigError{Reason: "OpenAI API key is required"}
		}
		return newOpenAIProvider(cfg, logger), nil
	default:
		return nil, &ConfigError{Reason: "unsupported provider " + cfg.Provider + ", supported providers are 'google' and 'openai'"}
	}
}
