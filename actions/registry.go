// Package actions holds the named zero-argument actions a user can invoke by
// name. Extensions contribute them at install time; each orchestrator owns
// its own Registry.
package actions

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Action is the function signature for action implementations. The returned
// text is shown to whoever invoked the action.
type Action func(ctx context.Context) (string, error)

// Info describes a registered action.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type entry struct {
	info   Info
	action Action
}

// Registry maps action names to actions, preserving registration order.
type Registry struct {
	entries map[string]entry
	order   []string
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a new action.
// Returns ErrAlreadyExists if an action with the same name is already
// registered. Use Replace to update an existing action.
func (r *Registry) Register(name, description string, action Action) error {
	if name == "" {
		return ErrEmptyName
	}
	if action == nil {
		return fmt.Errorf("%w: %s", ErrNilAction, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	r.entries[name] = entry{info: Info{Name: name, Description: description}, action: action}
	r.order = append(r.order, name)
	return nil
}

// Replace updates an existing action.
// Returns ErrNotFound if no action with the given name is registered.
func (r *Registry) Replace(name, description string, action Action) error {
	if name == "" {
		return ErrEmptyName
	}
	if action == nil {
		return fmt.Errorf("%w: %s", ErrNilAction, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.entries[name] = entry{info: Info{Name: name, Description: description}, action: action}
	return nil
}

// Remove deletes an action. It reports whether the name was registered.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return false
	}
	delete(r.entries, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return true
}

// Get retrieves an action by name.
func (r *Registry) Get(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return e.action, true
}

// List returns registered actions in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.entries[name].info)
	}
	return infos
}

// Run invokes the named action.
// Returns ErrNotFound if the action is not registered. Action errors are
// wrapped with the action name.
func (r *Registry) Run(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	out, err := e.action(ctx)
	if err != nil {
		return "", fmt.Errorf("action %s failed: %w", name, err)
	}
	return out, nil
}
