package lane

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Config lists extra patterns appended after the built-in tables.
type Config struct {
	Strategic      []string `json:"strategic,omitempty" yaml:"strategic,omitempty"`
	Implementation []string `json:"implementation,omitempty" yaml:"implementation,omitempty"`
}

// DefaultConfig returns a Config with no extra patterns.
func DefaultConfig() Config {
	return Config{}
}

// Merge appends the patterns from source to c.
func (c *Config) Merge(source *Config) {
	c.Strategic = append(c.Strategic, source.Strategic...)
	c.Implementation = append(c.Implementation, source.Implementation...)
}

// Validate compiles every pattern and reports all that fail, joined.
func (c *Config) Validate() error {
	var errs []error
	for _, group := range []struct {
		lane  protocol.Lane
		exprs []string
	}{
		{protocol.LaneStrategic, c.Strategic},
		{protocol.LaneImplementation, c.Implementation},
	} {
		for _, expr := range group.exprs {
			if _, err := regexp.Compile(expr); err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid pattern %q: %w", group.lane, expr, err))
			}
		}
	}
	return errors.Join(errs...)
}

// NewFromConfig creates a Classifier with the built-in tables plus the
// configured patterns.
func NewFromConfig(cfg *Config) (*Classifier, error) {
	c := New()
	for _, expr := range cfg.Strategic {
		if err := c.AddExpr(protocol.LaneStrategic, expr); err != nil {
			return nil, fmt.Errorf("strategic: %w", err)
		}
	}
	for _, expr := range cfg.Implementation {
		if err := c.AddExpr(protocol.LaneImplementation, expr); err != nil {
			return nil, fmt.Errorf("implementation: %w", err)
		}
	}
	return c, nil
}
