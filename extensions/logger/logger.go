// Package logger provides an extension that writes the orchestrator's event
// feed to a zap logger: every stored reply, approval request and decision.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/events"
	"github.com/tailored-agentic-units/ucf/extension"
)

const (
	Name    = "logger"
	Version = "1.0.0"
)

// Option configures an Extension.
type Option func(*Extension)

// WithContent includes full message content in message entries. Content is
// omitted by default; entries carry its length instead.
func WithContent() Option {
	return func(e *Extension) { e.content = true }
}

// Extension logs conversation events.
type Extension struct {
	log     *zap.Logger
	content bool

	mu     sync.Mutex
	unsubs []func()
}

// New creates a logger extension writing to log. A nil log discards output.
func New(log *zap.Logger, opts ...Option) *Extension {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Extension{log: log.Named(Name)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extension) Name() string    { return Name }
func (e *Extension) Version() string { return Version }

func (e *Extension) Install(_ context.Context, host extension.Host) error {
	bus := host.Events()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.unsubs = append(e.unsubs,
		bus.OnMessage(e.onMessage),
		bus.OnApprovalRequest(e.onRequest),
		bus.OnApprovalDecision(e.onDecision),
		bus.OnError(e.onError),
	)

	e.log.Info("extension installed", zap.String("version", Version))
	return nil
}

func (e *Extension) Uninstall(_ context.Context, _ extension.Host) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil

	e.log.Info("extension uninstalled", zap.String("version", Version))
	return nil
}

func (e *Extension) onMessage(_ context.Context, msg protocol.Message) {
	fields := []zap.Field{
		zap.String("id", msg.ID),
		zap.String("direction", string(msg.Direction)),
		zap.String("lane", string(msg.Lane)),
		zap.Time("timestamp", msg.Timestamp),
	}
	if e.content {
		fields = append(fields, zap.String("content", msg.Content))
	} else {
		fields = append(fields, zap.Int("content_length", len(msg.Content)))
	}
	e.log.Info("message", fields...)
}

func (e *Extension) onRequest(_ context.Context, req protocol.ApprovalRequest) {
	e.log.Info("approval requested",
		zap.String("request_id", req.ID),
		zap.String("command", req.Command),
		zap.String("risk", string(req.Risk)),
		zap.String("intent", req.Intent),
	)
}

func (e *Extension) onDecision(_ context.Context, d protocol.ApprovalDecision) {
	verdict := "DENIED"
	if d.Approved {
		verdict = "APPROVED"
	}
	e.log.Info("approval decided",
		zap.String("request_id", d.RequestID),
		zap.String("verdict", verdict),
		zap.String("reason", d.Reason),
	)
}

func (e *Extension) onError(_ context.Context, info events.ErrorInfo) {
	e.log.Error(info.Description, zap.Error(info.Err))
}
