// Package ai defines the advisory-provider abstraction: a Provider turns a
// prompt into raw reply text, and the registry creates providers by name.
// The caller never interprets provider failures beyond "no result
// available"; retry policy lives inside each provider.
package ai

import "context"

// Provider is one advisory backend.
type Provider interface {
	// Name returns the provider name (e.g. "gigachat", "openai").
	Name() string

	// Complete performs one completion call.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// ValidateConfig validates the provider configuration.
	ValidateConfig() error

	// Close cleans up provider resources.
	Close() error
}
