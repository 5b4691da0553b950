// Package extension tracks the named units of behavior installed into an
// orchestrator. An extension observes the event feed, contributes named
// actions, augments lane patterns, or swaps the completion backend, all
// through the Host handle it receives at install time.
package extension

import (
	"context"

	"github.com/tailored-agentic-units/ucf/actions"
	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/events"
	"github.com/tailored-agentic-units/ucf/lane"
)

// Extension is installed once into a Host. Name is the registry key.
type Extension interface {
	Name() string
	Version() string
	Install(ctx context.Context, host Host) error
}

// Uninstaller is implemented by extensions that release resources or undo
// their changes when removed.
type Uninstaller interface {
	Uninstall(ctx context.Context, host Host) error
}

// Host is the orchestrator surface exposed to extensions.
type Host interface {
	// Events returns the host's event feed.
	Events() *events.Bus
	// Backend returns the active completion backend.
	Backend() backend.Backend
	// SetBackend replaces the active completion backend for later rounds.
	SetBackend(b backend.Backend)
	// AddAction registers a named zero-argument action.
	AddAction(name, description string, action actions.Action) error
	// RemoveAction unregisters a named action.
	RemoveAction(name string) bool
	// Classifier returns the lane classifier so extensions can add patterns.
	Classifier() *lane.Classifier
}

// Info identifies a registered extension.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InfoOf returns the Info for ext.
func InfoOf(ext Extension) Info {
	return Info{Name: ext.Name(), Version: ext.Version()}
}
