package gigachat

import "github.com/logtriage/logtriage/internal/ai"

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Type() string {
	return "gigachat"
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
		Type:        "gigachat",
		AuthURL:     c.AuthURL,
		BaseURL:     c.BaseURL,
		Scope:       c.Scope,
		Model:       c.Model,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

func init() {
	_ = ai.GlobalRegistry().Register(NewFactory())
}
