// Package anthropic provides an extension that makes the Anthropic Messages
// API the orchestrator's completion backend. Uninstalling it restores the
// backend that was active before.
package anthropic

import (
	"context"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/ucf/backend"
	client "github.com/tailored-agentic-units/ucf/backend/anthropic"
	"github.com/tailored-agentic-units/ucf/backend/mock"
	"github.com/tailored-agentic-units/ucf/extension"
)

const (
	Name    = "anthropic"
	Version = "1.0.0"

	// APIKeyEnv is read when the config carries no key source.
	APIKeyEnv = "ANTHROPIC_API_KEY"
)

// Extension swaps the active backend for an Anthropic client.
type Extension struct {
	cfg  backend.Config
	opts []client.Option

	mu       sync.Mutex
	client   *client.Client
	previous backend.Backend
}

// New creates the extension. Empty config fields take the Anthropic client
// defaults; without APIKey or APIKeyEnv the key is read from
// ANTHROPIC_API_KEY.
func New(cfg backend.Config, opts ...client.Option) *Extension {
	cfg.Provider = client.Name
	if cfg.APIKey == "" && cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = APIKeyEnv
	}
	return &Extension{cfg: cfg, opts: opts}
}

func (e *Extension) Name() string    { return Name }
func (e *Extension) Version() string { return Version }

// Install fails without an API key, leaving the active backend in place.
func (e *Extension) Install(_ context.Context, host extension.Host) error {
	c, err := client.New(&e.cfg, e.opts...)
	if err != nil {
		return fmt.Errorf("anthropic extension: %w", err)
	}

	e.mu.Lock()
	e.client = c
	e.previous = host.Backend()
	e.mu.Unlock()

	host.SetBackend(c)
	return nil
}

// Uninstall restores the previous backend, or the mock backend when there
// was none. A backend installed by someone else since is left alone.
func (e *Extension) Uninstall(_ context.Context, host extension.Host) error {
	e.mu.Lock()
	c, previous := e.client, e.previous
	e.client, e.previous = nil, nil
	e.mu.Unlock()

	if c == nil || host.Backend() != backend.Backend(c) {
		return nil
	}
	if previous == nil {
		previous = mock.New()
	}
	host.SetBackend(previous)
	return nil
}

// Model reports the model of the installed client, or "" before install.
func (e *Extension) Model() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return ""
	}
	return e.client.Model()
}
