// Package gate guards commands embedded in completion text.
//
// Scanning (Detect, Extract, AssessRisk, NewRequest) is pure. Approval is
// delegated to an injected Approver through a Gate, which owns the single
// suspension point and the approval concurrency policy.
package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source used for request and decision
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// Gate drives approval requests through an Approver.
type Gate struct {
	mu       sync.RWMutex
	approver Approver
	mode     string
	intent   string
	slot     *semaphore.Weighted
	now      func() time.Time
}

// New creates a Gate from configuration. A nil approver denies everything.
func New(cfg *Config, approver Approver, opts ...Option) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if approver == nil {
		approver = DenyAll
	}

	g := &Gate{
		approver: approver,
		mode:     cfg.Concurrency,
		intent:   cfg.DefaultIntent,
		slot:     semaphore.NewWeighted(1),
		now:      time.Now,
	}
	if g.mode == "" {
		g.mode = ModeQueue
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// SetApprover replaces the approver used by later requests.
func (g *Gate) SetApprover(a Approver) {
	if a == nil {
		a = DenyAll
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.approver = a
}

// NewRequest builds an ApprovalRequest stamped by the gate's clock. An empty
// intent falls back to the configured default intent.
func (g *Gate) NewRequest(command, intent string) protocol.ApprovalRequest {
	if intent == "" {
		intent = g.intent
	}
	return newRequestAt(command, intent, g.now())
}

// RequestApproval submits req to the approver and returns its decision.
//
// Approver failures are fail-closed: they produce a denied decision whose
// reason names the failure. An error is returned only when the context ends
// before a decision or, in reject mode, when another approval is open.
func (g *Gate) RequestApproval(ctx context.Context, req protocol.ApprovalRequest) (protocol.ApprovalDecision, error) {
	switch g.mode {
	case ModeReject:
		if !g.slot.TryAcquire(1) {
			return protocol.ApprovalDecision{}, fmt.Errorf("%w: %s", ErrApprovalBusy, req.ID)
		}
		defer g.slot.Release(1)
	case ModeQueue:
		if err := g.slot.Acquire(ctx, 1); err != nil {
			return protocol.ApprovalDecision{}, err
		}
		defer g.slot.Release(1)
	}

	g.mu.RLock()
	approver := g.approver
	g.mu.RUnlock()

	decision, err := approver.Approve(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return protocol.ApprovalDecision{}, ctxErr
		}
		decision = protocol.ApprovalDecision{
			Approved: false,
			Reason:   fmt.Sprintf("approval failed: %v", err),
		}
	}

	decision.RequestID = req.ID
	if decision.Timestamp.IsZero() {
		decision.Timestamp = g.now()
	}
	return decision, nil
}
