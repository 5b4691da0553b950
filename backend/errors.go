package backend

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for backend construction and lookup.
var (
	ErrBackendNotFound = errors.New("backend not found")
	ErrBackendExists   = errors.New("backend already registered")
	ErrEmptyName       = errors.New("backend name is empty")
	ErrUnknownProvider = errors.New("unknown backend provider")
	ErrEmptyResponse   = errors.New("empty completion response")
	ErrMissingAPIKey   = errors.New("api key not configured")
)

// Error is a completion failure reported by a remote backend.
type Error struct {
	Backend    string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend: status %d: %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth another attempt: rate
// limiting and server-side errors.
func (e *Error) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
