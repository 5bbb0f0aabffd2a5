package gigachat

import (
	"fmt"
	"net/url"
	"time"

	"github.com/logtriage/logtriage/internal/ai"
)

const (
	DefaultAuthURL     = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultBaseURL     = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultModel       = "GigaChat"
	DefaultScope       = "GIGACHAT_API_PERS"
	DefaultTemperature = 0.3
	DefaultTimeout     = 60 * time.Second
)

// Config holds GigaChat access parameters. AuthKey is the base64 Basic
// authorization key exchanged for a short-lived access token; ClientID is
// sent as the RqUID header on that exchange.
type Config struct {
	AuthKey     string        `json:"auth_key"`
	ClientID    string        `json:"client_id"`
	Scope       string        `json:"scope"`
	AuthURL     string        `json:"auth_url"`
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout"`

	// InsecureSkipVerify disables TLS verification. The public endpoints
	// sit behind the Russian NUC CA, which is absent from most trust
	// stores.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

func DefaultConfig() *Config {
	return &Config{
		Scope:       DefaultScope,
		AuthURL:     DefaultAuthURL,
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

func (c *Config) Validate() error {
	if c.AuthKey == "" {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "auth key is required", "gigachat")
	}
	if c.ClientID == "" {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "client id is required", "gigachat")
	}
	if c.Scope == "" {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "scope is required", "gigachat")
	}
	for field, value := range map[string]string{"auth_url": c.AuthURL, "base_url": c.BaseURL} {
		if value == "" {
			return ai.NewProviderError(ai.ErrTypeConfiguration, field+" is required", "gigachat")
		}
		if _, err := url.Parse(value); err != nil {
			return ai.NewProviderError(ai.ErrTypeConfiguration, fmt.Sprintf("invalid %s: %v", field, err), "gigachat")
		}
	}
	if c.Model == "" {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "model is required", "gigachat")
	}
	if c.Timeout <= 0 {
		return ai.NewProviderError(ai.ErrTypeConfiguration, "timeout must be positive", "gigachat")
	}
	return nil
}

// FromProviderConfig maps the generic provider config onto the GigaChat
// one, filling defaults for anything left unset.
func FromProviderConfig(config *ai.ProviderConfig) *Config {
	c := DefaultConfig()
	if config == nil {
		return c
	}

	c.AuthKey = config.APIKey
	c.ClientID = config.ClientID
	if config.Scope != "" {
		c.Scope = config.Scope
	}
	if config.AuthURL != "" {
		c.AuthURL = config.AuthURL
	}
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
	c.InsecureSkipVerify = config.InsecureSkipVerify
	return c
}
