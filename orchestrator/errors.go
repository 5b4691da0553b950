package orchestrator

import "errors"

// Sentinel errors returned by the orchestrator.
var (
	// ErrNoBackend is returned by Chat when no completion backend is active.
	ErrNoBackend = errors.New("no completion backend configured")
	// ErrBusy is returned by Chat in reject mode while another round runs.
	ErrBusy = errors.New("another chat round is in progress")
	// ErrClosed is returned by operations on a closed orchestrator.
	ErrClosed = errors.New("orchestrator is closed")
)
