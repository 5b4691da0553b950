package extension

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Registry holds installed extensions keyed by name in installation order.
// A name is reserved while its install or uninstall hook runs, so
// concurrent registrations of one name cannot both install.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Extension
	order   []string
	pending map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Extension),
		pending: make(map[string]struct{}),
	}
}

// Register installs ext into host and records it.
// Returns ErrAlreadyRegistered, without calling Install, when the name is
// taken; the existing extension is left untouched. An extension whose
// Install fails is not recorded.
func (r *Registry) Register(ctx context.Context, ext Extension, host Host) error {
	name := ext.Name()
	if name == "" {
		return ErrEmptyName
	}

	if err := r.reserve(name); err != nil {
		return err
	}

	err := ext.Install(ctx, host)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, name)

	if err != nil {
		return fmt.Errorf("failed to install extension %s: %w", name, err)
	}

	r.entries[name] = ext
	r.order = append(r.order, name)
	return nil
}

// Unregister removes the named extension, running its Uninstall hook first
// when it has one. It reports false when no such extension is registered.
// The extension is removed even when Uninstall fails; the failure is
// returned alongside true.
func (r *Registry) Unregister(ctx context.Context, name string, host Host) (bool, error) {
	r.mu.Lock()
	ext, exists := r.entries[name]
	_, busy := r.pending[name]
	if !exists || busy {
		r.mu.Unlock()
		return false, nil
	}
	r.pending[name] = struct{}{}
	r.mu.Unlock()

	var err error
	if u, ok := ext.(Uninstaller); ok {
		if uerr := u.Uninstall(ctx, host); uerr != nil {
			err = fmt.Errorf("failed to uninstall extension %s: %w", name, uerr)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, name)
	delete(r.entries, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return true, err
}

// Get returns the named extension.
func (r *Registry) Get(name string) (Extension, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, exists := r.entries[name]
	return ext, exists
}

// List returns the registered extensions in installation order.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, InfoOf(r.entries[name]))
	}
	return infos
}

// Names returns the registered extension names in installation order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered extensions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) reserve(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.entries[name]
	_, busy := r.pending[name]
	if exists || busy {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.pending[name] = struct{}{}
	return nil
}
