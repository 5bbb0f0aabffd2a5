package openai

import (
	"fmt"
	"net/url"
	"time"

	"github.com/logtriage/logtriage/internal/ai"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.3
	DefaultTimeout     = 30 * time.Second
)

// Config holds access parameters for OpenAI-compatible chat endpoints.
type Config struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "API key is required", "openai")
	}
	if c.BaseURL == "" {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "base URL is required", "openai")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return ai.NewProviderError(ai.ErrTypeConfiguration, fmt.Sprintf("invalid base URL: %v", err), "openai")
	}
	if c.Model == "" {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "model is required", "openai")
	}
	if c.Timeout <= 0 {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "timeout must be positive", "openai")
	}
	return nil
}

// FromProviderConfig maps the generic provider config onto the OpenAI one,
// filling defaults for anything left unset.
func FromProviderConfig(config *ai.ProviderConfig) *Config {
	c := DefaultConfig()
	if config == nil {
		return c
	}

	c.APIKey = config.APIKey
	if config.BaseURL != "" {
		c.BaseURL = config.BaseURL
	}
	if config.Model != "" {
		c.Model = config.Model
	}
	if config.Temperature != 0 {
		c.Temperature = config.Temperature
	}
	if config.MaxTokens != 0 {
		c.MaxTokens = config.MaxTokens
	}
	if config.Timeout != 0 {
		c.Timeout = config.Timeout
	}
	return c
}
