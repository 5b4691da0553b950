// Package backend defines the swappable text-completion capability the
// orchestrator forwards conversations to, along with the provider factory
// registry and a named, lazily instantiated backend Registry.
package backend

import (
	"context"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Backend maps an ordered message history and a lane to completion text.
// Implementations may retry internally; the caller treats any returned error
// as the final outcome of the attempt.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is the input to a single completion.
// Zero MaxTokens or Temperature defer to the backend's configuration.
type Request struct {
	Messages    []protocol.Message
	Lane        protocol.Lane
	MaxTokens   int
	Temperature float64
}

// Last returns the most recent message in the request, if any.
func (r Request) Last() (protocol.Message, bool) {
	if len(r.Messages) == 0 {
		return protocol.Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// Func adapts a function to the Backend interface.
type Func struct {
	name string
	fn   func(ctx context.Context, req Request) (string, error)
}

// NewFunc creates a Backend named name that delegates to fn.
func NewFunc(name string, fn func(ctx context.Context, req Request) (string, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string { return f.name }

func (f *Func) Complete(ctx context.Context, req Request) (string, error) {
	return f.fn(ctx, req)
}
