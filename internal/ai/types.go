package ai

import "time"

// CompletionRequest represents one advisory completion call.
type CompletionRequest struct {
	// Prompt is the user-level input text.
	Prompt string `json:"prompt"`

	// SystemPrompt provides system-level instructions.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 1.0).
	Temperature float64 `json:"temperature,omitempty"`

	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`
}

// CompletionResponse is the raw reply of a completion call. Content is
// untrusted text; record recovery happens downstream.
type CompletionResponse struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason"`
	Model        string      `json:"model"`
	Usage        *TokenUsage `json:"usage,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderConfig contains configuration for a provider instance.
type ProviderConfig struct {
	// Type is the provider type ("gigachat", "openai").
	Type string `json:"type"`

	// APIKey (or authorization key for token-exchange providers).
	APIKey string `json:"api_key,omitempty"`

	// BaseURL for the API endpoint.
	BaseURL string `json:"base_url,omitempty"`

	// AuthURL for providers that exchange a key for a short-lived token.
	AuthURL string `json:"auth_url,omitempty"`

	// ClientID identifies the caller on token requests.
	ClientID string `json:"client_id,omitempty"`

	// Scope for token-exchange providers.
	Scope string `json:"scope,omitempty"`

	// Model is the default model to use.
	Model string `json:"model,omitempty"`

	// MaxTokens limits response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature for requests.
	Temperature float64 `json:"temperature,omitempty"`

	// Timeout for HTTP calls.
	Timeout time.Duration `json:"timeout,omitempty"`

	// InsecureSkipVerify disables TLS certificate verification; some
	// on-premise advisory endpoints run behind a private CA.
	InsecureSkipVerify bool `json:"insecure_skip_verify,omitempty"`
}
