// Package metrics provides an extension that counts stored replies per lane
// and approval outcomes, and reports them through the "metrics" action.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/extension"
)

const (
	Name    = "metrics"
	Version = "1.0.0"

	// ActionName is the action registered on install.
	ActionName = "metrics"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Messages         int                   `json:"messages"`
	ByLane           map[protocol.Lane]int `json:"by_lane"`
	ApprovalRequests int                   `json:"approval_requests"`
	Approved         int                   `json:"approved"`
	Denied           int                   `json:"denied"`
}

// Extension counts conversation events.
type Extension struct {
	mu       sync.Mutex
	messages int
	byLane   map[protocol.Lane]int
	requests int
	approved int
	denied   int
	unsubs   []func()
}

// New creates a metrics extension with zeroed counters.
func New() *Extension {
	return &Extension{byLane: make(map[protocol.Lane]int)}
}

func (e *Extension) Name() string    { return Name }
func (e *Extension) Version() string { return Version }

func (e *Extension) Install(_ context.Context, host extension.Host) error {
	if err := host.AddAction(ActionName, "Show conversation metrics", e.report); err != nil {
		return err
	}

	bus := host.Events()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.unsubs = append(e.unsubs,
		bus.OnMessage(func(_ context.Context, msg protocol.Message) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.messages++
			if msg.Lane != "" {
				e.byLane[msg.Lane]++
			}
		}),
		bus.OnApprovalRequest(func(context.Context, protocol.ApprovalRequest) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.requests++
		}),
		bus.OnApprovalDecision(func(_ context.Context, d protocol.ApprovalDecision) {
			e.mu.Lock()
			defer e.mu.Unlock()
			if d.Approved {
				e.approved++
			} else {
				e.denied++
			}
		}),
	)
	return nil
}

func (e *Extension) Uninstall(_ context.Context, host extension.Host) error {
	host.RemoveAction(ActionName)

	e.mu.Lock()
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	return nil
}

// Snapshot returns the current counters.
func (e *Extension) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	byLane := make(map[protocol.Lane]int, len(e.byLane))
	for l, n := range e.byLane {
		byLane[l] = n
	}
	return Snapshot{
		Messages:         e.messages,
		ByLane:           byLane,
		ApprovalRequests: e.requests,
		Approved:         e.approved,
		Denied:           e.denied,
	}
}

// Reset zeroes every counter.
func (e *Extension) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.messages, e.requests, e.approved, e.denied = 0, 0, 0, 0
	clear(e.byLane)
}

func (e *Extension) report(context.Context) (string, error) {
	return e.Snapshot().String(), nil
}

// String renders the snapshot as the metrics action output.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total messages: %d\n", s.Messages)
	for _, l := range protocol.ValidLanes() {
		fmt.Fprintf(&b, "  - %s: %d\n", l, s.ByLane[l])
	}
	fmt.Fprintf(&b, "Approval requests: %d\n", s.ApprovalRequests)
	fmt.Fprintf(&b, "  - approved: %d\n", s.Approved)
	fmt.Fprintf(&b, "  - denied: %d", s.Denied)
	return b.String()
}
