package session

import (
	"errors"
	"fmt"
)

// KindMemory selects the in-memory session. It is the only kind; conversation
// state does not outlive the process.
const KindMemory = "memory"

// ErrUnknownKind is returned by New for an unsupported session kind.
var ErrUnknownKind = errors.New("unknown session kind")

// Config holds session initialization parameters.
type Config struct {
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{Kind: KindMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Kind != "" {
		c.Kind = source.Kind
	}
}

// New creates a Session from configuration.
func New(cfg *Config) (Session, error) {
	switch cfg.Kind {
	case "", KindMemory:
		return NewMemorySession(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, cfg.Kind)
	}
}
