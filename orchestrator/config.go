package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/gate"
	"github.com/tailored-agentic-units/ucf/lane"
	"github.com/tailored-agentic-units/ucf/session"
)

// Round concurrency policies for overlapping Chat calls.
const (
	// ConcurrencyQueue serializes rounds in arrival order.
	ConcurrencyQueue = "queue"
	// ConcurrencyReject fails an overlapping round with ErrBusy.
	ConcurrencyReject = "reject"
	// ConcurrencyConcurrent lets rounds overlap. Log appends from different
	// rounds may then interleave in completion order.
	ConcurrencyConcurrent = "concurrent"
)

// Config holds initialization parameters for all orchestrator subsystems.
// Each subsystem section delegates to that subsystem's config-driven
// constructor. Observer names one registered observer or a comma-separated
// list, such as "zap,slog"; empty selects the default slog logger.
type Config struct {
	Backend     backend.Config            `json:"backend" yaml:"backend"`
	Backends    map[string]backend.Config `json:"backends,omitempty" yaml:"backends,omitempty"`
	Gate        gate.Config               `json:"gate" yaml:"gate"`
	Lanes       lane.Config               `json:"lanes" yaml:"lanes"`
	Session     session.Config            `json:"session" yaml:"session"`
	Concurrency string                    `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Observer    string                    `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Backend:     backend.DefaultConfig(),
		Gate:        gate.DefaultConfig(),
		Lanes:       lane.DefaultConfig(),
		Session:     session.DefaultConfig(),
		Concurrency: ConcurrencyQueue,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Backend.Merge(&source.Backend)
	c.Gate.Merge(&source.Gate)
	c.Lanes.Merge(&source.Lanes)
	c.Session.Merge(&source.Session)

	if source.Concurrency != "" {
		c.Concurrency = source.Concurrency
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if len(source.Backends) > 0 {
		c.Backends = source.Backends
	}
}

// Validate reports configuration values no constructor accepts.
func (c *Config) Validate() error {
	switch c.Concurrency {
	case "", ConcurrencyQueue, ConcurrencyReject, ConcurrencyConcurrent:
	default:
		return fmt.Errorf("unknown round concurrency mode: %s", c.Concurrency)
	}
	return c.Gate.Validate()
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// resulting Config. Files ending in .yaml or .yml are decoded as YAML;
// anything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
