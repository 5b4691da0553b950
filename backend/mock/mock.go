// Package mock provides an offline completion backend that answers with
// canned, lane-appropriate replies. Importing it registers the "mock"
// provider.
package mock

import (
	"context"
	"strings"
	"time"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Name is the provider and backend name.
const Name = "mock"

func init() {
	backend.RegisterProvider(Name, func(cfg *backend.Config) (backend.Backend, error) {
		return New(WithDelay(cfg.ResponseDelay())), nil
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithDelay simulates network latency before every reply.
func WithDelay(d time.Duration) Option {
	return func(b *Backend) { b.delay = d }
}

// Backend replies from a fixed table keyed on words in the latest message.
type Backend struct {
	delay time.Duration
}

// New creates a mock Backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Complete(ctx context.Context, req backend.Request) (string, error) {
	if b.delay > 0 {
		timer := time.NewTimer(b.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	last, ok := req.Last()
	if !ok {
		return "", backend.ErrEmptyResponse
	}
	content := strings.ToLower(last.Content)

	if req.Lane == protocol.LaneImplementation {
		return implementationReply(content), nil
	}
	return strategicReply(content), nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func strategicReply(content string) string {
	switch {
	case containsAny(content, "structure", "architect"):
		return replyLayers
	case containsAny(content, "should", "best practice"):
		return replyPractices
	case containsAny(content, "api", "rest"):
		return replyREST
	default:
		return replyStrategicDefault
	}
}

func implementationReply(content string) string {
	switch {
	case containsAny(content, "create", "implement") && strings.Contains(content, "function"):
		return replyFunction
	case containsAny(content, "create", "implement") && containsAny(content, "rest", "endpoint"):
		return replyEndpoint
	case containsAny(content, "fix", "debug"):
		return replyDebug
	case containsAny(content, "install", "npm"):
		return replyInstall
	case containsAny(content, "clean", "remove", "delete"):
		return replyCleanup
	default:
		return replyImplementationDefault
	}
}
