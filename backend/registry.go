package backend

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Info describes a registered backend.
type Info struct {
	Name     string
	Provider string
	Model    string
}

// Registry manages named backend configurations with lazy instantiation.
// Configs are stored at registration time; backends are created on first
// Get call. Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	configs  map[string]Config
	backends map[string]Backend
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:  make(map[string]Config),
		backends: make(map[string]Backend),
	}
}

// Get retrieves a named backend, instantiating it lazily on first access.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, registered := r.configs[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}

	if b, exists := r.backends[name]; exists {
		return b, nil
	}

	b, err := New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend %q: %w", name, err)
	}

	r.backends[name] = b
	return b, nil
}

// List returns information about all registered backends, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.configs))
	for name, cfg := range r.configs {
		infos = append(infos, Info{
			Name:     name,
			Provider: cfg.Provider,
			Model:    cfg.Model,
		})
	}

	slices.SortFunc(infos, func(a, b Info) int {
		return strings.Compare(a.Name, b.Name)
	})
	return infos
}

// Register adds a named backend configuration to the registry.
// The backend is not instantiated until Get is called.
func (r *Registry) Register(name string, cfg Config) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return fmt.Errorf("%w: %s", ErrBackendExists, name)
	}

	r.configs[name] = cfg
	return nil
}

// Replace updates the configuration for an existing named backend.
// Any cached instance is invalidated; the next Get re-instantiates.
func (r *Registry) Replace(name string, cfg Config) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}

	r.configs[name] = cfg
	delete(r.backends, name)
	return nil
}

// Unregister removes a named backend from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}

	delete(r.configs, name)
	delete(r.backends, name)
	return nil
}
