package backend

import (
	"maps"
	"os"
	"time"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Config describes how to construct a backend through its provider.
type Config struct {
	Provider            string                   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model               string                   `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey              string                   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIKeyEnv           string                   `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	BaseURL             string                   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MaxTokens           int                      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature         float64                  `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TimeoutSeconds      int                      `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	MaxRetries          int                      `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	ResponseDelayMillis int                      `json:"response_delay_ms,omitempty" yaml:"response_delay_ms,omitempty"`
	SystemPrompts       map[protocol.Lane]string `json:"system_prompts,omitempty" yaml:"system_prompts,omitempty"`
}

// DefaultConfig returns the offline mock provider with conservative limits.
func DefaultConfig() Config {
	return Config{
		Provider:       "mock",
		MaxTokens:      1024,
		TimeoutSeconds: 60,
		MaxRetries:     3,
	}
}

// Merge applies non-zero values from source into c. System prompts merge
// per lane.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.APIKeyEnv != "" {
		c.APIKeyEnv = source.APIKeyEnv
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.Temperature > 0 {
		c.Temperature = source.Temperature
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
	if source.ResponseDelayMillis > 0 {
		c.ResponseDelayMillis = source.ResponseDelayMillis
	}
	if len(source.SystemPrompts) > 0 {
		if c.SystemPrompts == nil {
			c.SystemPrompts = make(map[protocol.Lane]string, len(source.SystemPrompts))
		}
		maps.Copy(c.SystemPrompts, source.SystemPrompts)
	}
}

// ResolveAPIKey returns APIKey, or the value of the APIKeyEnv environment
// variable when APIKey is empty.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResponseDelay returns ResponseDelayMillis as a duration.
func (c *Config) ResponseDelay() time.Duration {
	return time.Duration(c.ResponseDelayMillis) * time.Millisecond
}
