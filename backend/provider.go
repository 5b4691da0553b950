package backend

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a Backend from configuration.
type Factory func(cfg *Config) (Backend, error)

var providers = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{
	factories: make(map[string]Factory),
}

// RegisterProvider makes a provider available to New. Provider packages
// call it from init; importing a provider package enables it.
func RegisterProvider(name string, factory Factory) {
	providers.mu.Lock()
	defer providers.mu.Unlock()
	providers.factories[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providers.mu.RLock()
	defer providers.mu.RUnlock()

	names := make([]string, 0, len(providers.factories))
	for name := range providers.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates a Backend using the provider named by cfg.Provider.
func New(cfg *Config) (Backend, error) {
	providers.mu.RLock()
	factory, exists := providers.factories[cfg.Provider]
	providers.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	return factory(cfg)
}
