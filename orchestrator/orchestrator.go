// Package orchestrator composes the lane classifier, completion backend,
// command gate, conversation log and extension registry into the chat round.
//
// The orchestrator initializes from configuration via New, creating all
// subsystems internally. Functional options override any subsystem.
//
//	o, err := orchestrator.New(&cfg, orchestrator.WithApprover(gate.ApproveAll))
//	reply, err := o.Chat(ctx, "How should I structure this service?")
//
// Each orchestrator owns its event feed; extensions and presentation layers
// subscribe through Events.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tailored-agentic-units/ucf/actions"
	"github.com/tailored-agentic-units/ucf/backend"
	_ "github.com/tailored-agentic-units/ucf/backend/mock" // default provider
	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/events"
	"github.com/tailored-agentic-units/ucf/extension"
	"github.com/tailored-agentic-units/ucf/gate"
	"github.com/tailored-agentic-units/ucf/lane"
	"github.com/tailored-agentic-units/ucf/observability"
	"github.com/tailored-agentic-units/ucf/session"
)

// Option configures an Orchestrator after config-driven initialization.
// Overrides replace config-created defaults.
type Option func(*Orchestrator)

// WithBackend overrides the config-created completion backend.
func WithBackend(b backend.Backend) Option {
	return func(o *Orchestrator) { o.backend = b }
}

// WithBackendRegistry overrides the config-created named backend registry.
func WithBackendRegistry(r *backend.Registry) Option {
	return func(o *Orchestrator) { o.backends = r }
}

// WithApprover sets the approval actor behind the command gate. Without it
// every proposed command is denied.
func WithApprover(a gate.Approver) Option {
	return func(o *Orchestrator) { o.approver = a }
}

// WithSession overrides the config-created conversation log.
func WithSession(s session.Session) Option {
	return func(o *Orchestrator) { o.session = s }
}

// WithObserver overrides the configured observer.
func WithObserver(obs observability.Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithClassifier overrides the config-created lane classifier.
func WithClassifier(c *lane.Classifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

// WithExtensions installs extensions, in order, at the end of New.
func WithExtensions(exts ...extension.Extension) Option {
	return func(o *Orchestrator) { o.initial = append(o.initial, exts...) }
}

// WithClock overrides the time source for messages, requests, decisions and
// the events that carry them.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

var _ extension.Host = (*Orchestrator)(nil)

// Orchestrator runs chat rounds and hosts extensions.
type Orchestrator struct {
	mu      sync.RWMutex
	backend backend.Backend
	closed  bool

	backends    *backend.Registry
	classifier  *lane.Classifier
	gate        *gate.Gate
	gateEnabled atomic.Bool
	approver    gate.Approver
	session     session.Session
	bus         *events.Bus
	actions     *actions.Registry
	extensions  *extension.Registry
	observer    observability.Observer
	concurrency string
	rounds      *semaphore.Weighted
	now         func() time.Time
	initial     []extension.Extension
}

// New creates an Orchestrator from configuration. Subsystems are initialized
// from their config sections; options applied afterwards override any of
// them. Extensions given through WithExtensions are installed last.
func New(cfg *Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var active backend.Backend
	if cfg.Backend.Provider != "" {
		b, err := backend.New(&cfg.Backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend: %w", err)
		}
		active = b
	}

	classifier, err := lane.NewFromConfig(&cfg.Lanes)
	if err != nil {
		return nil, fmt.Errorf("failed to create lane classifier: %w", err)
	}

	sesh, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	reg := backend.NewRegistry()
	for name, backendCfg := range cfg.Backends {
		if err := reg.Register(name, backendCfg); err != nil {
			return nil, fmt.Errorf("failed to register backend %q: %w", name, err)
		}
	}

	var observer observability.Observer = observability.NewSlogObserver(slog.Default())
	if cfg.Observer != "" {
		observer, err = observability.Resolve(cfg.Observer)
		if err != nil {
			return nil, err
		}
	}

	o := &Orchestrator{
		backend:     active,
		backends:    reg,
		classifier:  classifier,
		session:     sesh,
		bus:         events.NewBus(),
		actions:     actions.NewRegistry(),
		extensions:  extension.NewRegistry(),
		observer:    observer,
		concurrency: cfg.Concurrency,
		rounds:      semaphore.NewWeighted(1),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	o.gate, err = gate.New(&cfg.Gate, o.approver, gate.WithClock(o.now))
	if err != nil {
		return nil, fmt.Errorf("failed to create command gate: %w", err)
	}
	o.gateEnabled.Store(!cfg.Gate.Disabled)

	for _, ext := range o.initial {
		if err := o.InstallExtension(context.Background(), ext); err != nil {
			return nil, err
		}
	}
	o.initial = nil

	return o, nil
}

// DenialNotice is the content stored in place of a reply whose command was
// denied.
func DenialNotice(command string) string {
	return fmt.Sprintf("Command execution denied: %s\n\nThe command was not executed. You can run it manually if needed.", command)
}

// Chat runs one round for content and returns the stored outbound message.
//
// The inbound message is appended, classified and sent with the full history
// to the active backend. When the gate is enabled and the reply proposes a
// command, an approval request is raised and decided before the reply is
// stored; a denied reply is stored as DenialNotice. A backend or approval
// failure ends the round with an error event and no outbound message.
func (o *Orchestrator) Chat(ctx context.Context, content string) (protocol.Message, error) {
	if o.isClosed() {
		return protocol.Message{}, ErrClosed
	}

	release, err := o.acquireRound(ctx)
	if err != nil {
		return protocol.Message{}, err
	}
	defer release()

	b := o.Backend()
	if b == nil {
		return protocol.Message{}, o.fail(ctx, "no completion backend configured", ErrNoBackend)
	}

	// RECEIVED
	inbound := protocol.NewMessageAt(protocol.Inbound, content, "", o.now())
	o.session.Append(inbound)
	o.emit(ctx, EventChatReceived, observability.LevelVerbose, map[string]any{
		"message_id":     inbound.ID,
		"content_length": len(content),
	})

	// CLASSIFIED
	ln := o.classifier.Classify(content)
	o.emit(ctx, EventChatClassified, observability.LevelVerbose, map[string]any{
		"message_id": inbound.ID,
		"lane":       string(ln),
	})

	// COMPLETED
	reply, err := b.Complete(ctx, backend.Request{
		Messages: o.session.Messages(),
		Lane:     ln,
	})
	if err != nil {
		return protocol.Message{}, o.fail(ctx, fmt.Sprintf("completion failed: %v", err), fmt.Errorf("completion failed: %w", err))
	}
	o.emit(ctx, EventChatCompleted, observability.LevelInfo, map[string]any{
		"backend":         b.Name(),
		"lane":            string(ln),
		"response_length": len(reply),
	})

	// SCANNED
	command, found := "", false
	if o.gateEnabled.Load() && gate.Detect(reply) {
		command, found = gate.Extract(reply)
	}
	o.emit(ctx, EventChatScanned, observability.LevelVerbose, map[string]any{
		"gate_enabled":  o.gateEnabled.Load(),
		"command_found": found,
	})

	if found {
		// AWAITING_APPROVAL
		req := o.gate.NewRequest(command, fmt.Sprintf("Execute command suggested by %s", ln))
		o.publish(ctx, events.NewApprovalRequestEvent(req))
		o.emit(ctx, EventApprovalRequested, observability.LevelInfo, map[string]any{
			"request_id": req.ID,
			"command":    req.Command,
			"risk":       string(req.Risk),
		})

		decision, err := o.gate.RequestApproval(ctx, req)
		if err != nil {
			return protocol.Message{}, o.fail(ctx, fmt.Sprintf("approval failed: %v", err), fmt.Errorf("approval failed: %w", err))
		}

		// DECIDED
		o.publish(ctx, events.NewApprovalDecisionEvent(decision))
		o.emit(ctx, EventApprovalDecided, observability.LevelInfo, map[string]any{
			"request_id": req.ID,
			"approved":   decision.Approved,
			"reason":     decision.Reason,
		})

		if !decision.Approved {
			reply = DenialNotice(command)
		}
	}

	// FINALIZED
	outbound := protocol.NewMessageAt(protocol.Outbound, reply, ln, o.now())
	o.session.Append(outbound)
	o.publish(ctx, events.NewMessageEvent(outbound))
	o.emit(ctx, EventChatFinalized, observability.LevelInfo, map[string]any{
		"message_id": outbound.ID,
		"lane":       string(ln),
		"command":    found,
	})

	return outbound, nil
}

// AnalyzeRouting explains how content would be classified.
func (o *Orchestrator) AnalyzeRouting(content string) lane.Analysis {
	return o.classifier.Analyze(content)
}

// History returns a copy of the conversation log.
func (o *Orchestrator) History() []protocol.Message {
	return o.session.Messages()
}

// ClearHistory empties the conversation log.
func (o *Orchestrator) ClearHistory() {
	o.session.Clear()
}

// Session returns the conversation log.
func (o *Orchestrator) Session() session.Session {
	return o.session
}

// Events returns the orchestrator's event feed.
func (o *Orchestrator) Events() *events.Bus {
	return o.bus
}

// Classifier returns the lane classifier.
func (o *Orchestrator) Classifier() *lane.Classifier {
	return o.classifier
}

// Backend returns the active completion backend, or nil.
func (o *Orchestrator) Backend() backend.Backend {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.backend
}

// SetBackend replaces the active completion backend. Rounds already in
// flight keep the backend they started with.
func (o *Orchestrator) SetBackend(b backend.Backend) {
	o.mu.Lock()
	previous := o.backend
	o.backend = b
	o.mu.Unlock()

	o.emit(context.Background(), EventBackendChanged, observability.LevelInfo, map[string]any{
		"previous": backendName(previous),
		"current":  backendName(b),
	})
}

// UseBackend activates the named backend from the backend registry.
func (o *Orchestrator) UseBackend(name string) error {
	b, err := o.backends.Get(name)
	if err != nil {
		return err
	}
	o.SetBackend(b)
	return nil
}

// Backends lists the named backends available to UseBackend.
func (o *Orchestrator) Backends() []backend.Info {
	return o.backends.List()
}

// SetApprover replaces the approval actor for later requests.
func (o *Orchestrator) SetApprover(a gate.Approver) {
	o.gate.SetApprover(a)
}

// SetGateEnabled turns command scanning on or off for later rounds.
func (o *Orchestrator) SetGateEnabled(enabled bool) {
	o.gateEnabled.Store(enabled)
}

// GateEnabled reports whether replies are scanned for commands.
func (o *Orchestrator) GateEnabled() bool {
	return o.gateEnabled.Load()
}

// AddAction registers a named zero-argument action.
func (o *Orchestrator) AddAction(name, description string, action actions.Action) error {
	return o.actions.Register(name, description, action)
}

// RemoveAction unregisters a named action.
func (o *Orchestrator) RemoveAction(name string) bool {
	return o.actions.Remove(name)
}

// RunAction invokes a named action and returns its output.
func (o *Orchestrator) RunAction(ctx context.Context, name string) (string, error) {
	return o.actions.Run(ctx, name)
}

// Actions lists the registered actions in registration order.
func (o *Orchestrator) Actions() []actions.Info {
	return o.actions.List()
}

// InstallExtension installs ext and publishes an extension-installed event.
// A name already in use is rejected with extension.ErrAlreadyRegistered and
// the installed extension is left untouched.
func (o *Orchestrator) InstallExtension(ctx context.Context, ext extension.Extension) error {
	if o.isClosed() {
		return ErrClosed
	}

	if err := o.extensions.Register(ctx, ext, o); err != nil {
		o.emit(ctx, EventError, observability.LevelWarning, map[string]any{
			"extension": ext.Name(),
			"error":     err.Error(),
		})
		return err
	}

	o.publish(ctx, events.NewExtensionEvent(events.TypeExtensionInstalled, ext.Name(), ext.Version()))
	o.emit(ctx, EventExtensionInstalled, observability.LevelInfo, map[string]any{
		"name":    ext.Name(),
		"version": ext.Version(),
	})
	return nil
}

// UninstallExtension removes the named extension. It reports false when no
// such extension is installed.
func (o *Orchestrator) UninstallExtension(ctx context.Context, name string) (bool, error) {
	ext, ok := o.extensions.Get(name)
	if !ok {
		return false, nil
	}

	removed, err := o.extensions.Unregister(ctx, name, o)
	if !removed {
		return false, err
	}

	o.publish(ctx, events.NewExtensionEvent(events.TypeExtensionUninstalled, ext.Name(), ext.Version()))
	o.emit(ctx, EventExtensionUninstalled, observability.LevelInfo, map[string]any{
		"name":    ext.Name(),
		"version": ext.Version(),
	})
	return true, err
}

// Extensions lists installed extensions in installation order.
func (o *Orchestrator) Extensions() []extension.Info {
	return o.extensions.List()
}

// Close uninstalls every extension in reverse installation order and drops
// all event subscribers. Later Chat calls fail with ErrClosed.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	var errs []error
	names := o.extensions.Names()
	for i := len(names) - 1; i >= 0; i-- {
		if _, err := o.UninstallExtension(ctx, names[i]); err != nil {
			errs = append(errs, err)
		}
	}

	o.bus.Clear()
	return errors.Join(errs...)
}

func (o *Orchestrator) isClosed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.closed
}

func (o *Orchestrator) acquireRound(ctx context.Context) (func(), error) {
	switch o.concurrency {
	case ConcurrencyConcurrent:
		return func() {}, nil
	case ConcurrencyReject:
		if !o.rounds.TryAcquire(1) {
			return nil, ErrBusy
		}
	default:
		if err := o.rounds.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}
	return func() { o.rounds.Release(1) }, nil
}

// fail publishes an error event for a round that cannot finish and returns
// err for the caller.
func (o *Orchestrator) fail(ctx context.Context, description string, err error) error {
	o.publish(ctx, events.NewErrorEvent(description, err))
	o.emit(ctx, EventError, observability.LevelError, map[string]any{
		"error": err.Error(),
	})
	return err
}

// publish stamps e from the orchestrator clock before delivery.
func (o *Orchestrator) publish(ctx context.Context, e events.Event) {
	e.Timestamp = o.now()
	o.bus.Publish(ctx, e)
}

func (o *Orchestrator) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	o.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: o.now(),
		Source:    "orchestrator",
		Data:      data,
	})
}

func backendName(b backend.Backend) string {
	if b == nil {
		return ""
	}
	return b.Name()
}
