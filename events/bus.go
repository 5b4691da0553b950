package events

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Handler receives published events.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	topic   Type
	all     bool
	handler Handler
}

// Bus delivers events synchronously to subscribers in subscription order.
// Publish returns after every handler has run. Handlers may subscribe or
// unsubscribe during delivery; the change applies to the next Publish.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for events of type t and returns a function
// that removes it. The returned function is idempotent.
func (b *Bus) Subscribe(t Type, handler Handler) func() {
	return b.add(subscription{topic: t, handler: handler})
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) func() {
	return b.add(subscription{all: true, handler: handler})
}

// Publish delivers e to the matching subscribers.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.all || s.topic == e.Type {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h(ctx, e)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = nil
}

// OnMessage subscribes fn to message events.
func (b *Bus) OnMessage(fn func(ctx context.Context, msg protocol.Message)) func() {
	return b.Subscribe(TypeMessage, func(ctx context.Context, e Event) {
		if msg, ok := e.Payload.(protocol.Message); ok {
			fn(ctx, msg)
		}
	})
}

// OnApprovalRequest subscribes fn to icerc-request events.
func (b *Bus) OnApprovalRequest(fn func(ctx context.Context, req protocol.ApprovalRequest)) func() {
	return b.Subscribe(TypeApprovalRequest, func(ctx context.Context, e Event) {
		if req, ok := e.Payload.(protocol.ApprovalRequest); ok {
			fn(ctx, req)
		}
	})
}

// OnApprovalDecision subscribes fn to icerc-decision events.
func (b *Bus) OnApprovalDecision(fn func(ctx context.Context, decision protocol.ApprovalDecision)) func() {
	return b.Subscribe(TypeApprovalDecision, func(ctx context.Context, e Event) {
		if d, ok := e.Payload.(protocol.ApprovalDecision); ok {
			fn(ctx, d)
		}
	})
}

// OnError subscribes fn to error events.
func (b *Bus) OnError(fn func(ctx context.Context, info ErrorInfo)) func() {
	return b.Subscribe(TypeError, func(ctx context.Context, e Event) {
		if info, ok := e.Payload.(ErrorInfo); ok {
			fn(ctx, info)
		}
	})
}

func (b *Bus) add(s subscription) func() {
	b.mu.Lock()
	b.nextID++
	s.id = b.nextID
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(s.id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
