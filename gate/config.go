package gate

import "fmt"

// Concurrency modes for the approval channel.
const (
	// ModeQueue serializes approvals: a second request waits for the first.
	ModeQueue = "queue"
	// ModeReject fails a request with ErrApprovalBusy while another is open.
	ModeReject = "reject"
	// ModeUnbounded lets requests overlap. Only for approvers that tolerate it.
	ModeUnbounded = "unbounded"
)

// Config holds command gate parameters.
type Config struct {
	Disabled      bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Concurrency   string `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	DefaultIntent string `json:"default_intent,omitempty" yaml:"default_intent,omitempty"`
}

// DefaultConfig returns an enabled gate that queues approvals.
func DefaultConfig() Config {
	return Config{
		Concurrency:   ModeQueue,
		DefaultIntent: DefaultIntent,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Disabled {
		c.Disabled = true
	}
	if source.Concurrency != "" {
		c.Concurrency = source.Concurrency
	}
	if source.DefaultIntent != "" {
		c.DefaultIntent = source.DefaultIntent
	}
}

// Validate reports an unknown concurrency mode.
func (c *Config) Validate() error {
	switch c.Concurrency {
	case "", ModeQueue, ModeReject, ModeUnbounded:
		return nil
	default:
		return fmt.Errorf("unknown approval concurrency mode: %s", c.Concurrency)
	}
}
