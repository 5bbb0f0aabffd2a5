package openai

import "github.com/logtriage/logtriage/internal/ai"

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return "openai"
}

func (f *Factory) Create(config *ai.ProviderConfig) (ai.Provider, error) {
	return New(FromProviderConfig(config))
}

func (f *Factory) ValidateConfig(config *ai.ProviderConfig) error {
	return FromProviderConfig(config).Validate()
}

func (f *Factory) DefaultConfig() *ai.ProviderConfig {
	c := DefaultConfig()
	return &ai.ProviderConfig{
		Type:        "openai",
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

func init() {
	_ = ai.GlobalRegistry().Register(NewFactory())
}
