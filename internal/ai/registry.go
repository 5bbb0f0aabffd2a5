package ai

import "sync"

// Factory creates provider instances of one type.
type Factory interface {
	// Create creates a provider with the given config.
	Create(config *ProviderConfig) (Provider, error)

	// Type returns the provider type this factory creates.
	Type() string

	// ValidateConfig validates configuration for this provider type.
	ValidateConfig(config *ProviderConfig) error

	// DefaultConfig returns a default configuration.
	DefaultConfig() *ProviderConfig
}

// Registry maps provider type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering the same type twice is an error.
func (r *Registry) Register(factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := factory.Type()
	if _, exists := r.factories[name]; exists {
		return NewProviderError(ErrTypeConfiguration, "provider already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds a provider of the named type. A nil config uses the
// factory's default.
func (r *Registry) Create(name string, config *ProviderConfig) (Provider, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, NewProviderError(ErrTypeNotFound, "provider not registered", name)
	}
	if config == nil {
		config = factory.DefaultConfig()
	}
	if err := factory.ValidateConfig(config); err != nil {
		return nil, err
	}
	return factory.Create(config)
}

// List returns all registered provider type names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a provider type is registered.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

var globalRegistry = NewRegistry()

// GlobalRegistry returns the process-wide registry populated by provider
// packages at init time.
func GlobalRegistry() *Registry {
	return globalRegistry
}
