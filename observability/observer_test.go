package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/tailored-agentic-units/ucf/observability"
)

// recorder keeps the types of the events it receives.
type recorder struct {
	types []observability.EventType
}

func (r *recorder) OnEvent(_ context.Context, event observability.Event) {
	r.types = append(r.types, event.Type)
}

func event(t observability.EventType, level observability.Level) observability.Event {
	return observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "orchestrator",
	}
}

func TestLevel_Mappings(t *testing.T) {
	tests := []struct {
		level observability.Level
		text  string
		slog  slog.Level
		zap   zapcore.Level
	}{
		{level: 1, text: "TRACE", slog: slog.LevelDebug, zap: zapcore.DebugLevel},
		{level: observability.LevelVerbose, text: "DEBUG", slog: slog.LevelDebug, zap: zapcore.DebugLevel},
		{level: observability.LevelInfo, text: "INFO", slog: slog.LevelInfo, zap: zapcore.InfoLevel},
		{level: observability.LevelWarning, text: "WARN", slog: slog.LevelWarn, zap: zapcore.WarnLevel},
		{level: observability.LevelError, text: "ERROR", slog: slog.LevelError, zap: zapcore.ErrorLevel},
		{level: 21, text: "FATAL", slog: slog.LevelError, zap: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := tt.level.String(); got != tt.text {
				t.Errorf("String() = %q, want %q", got, tt.text)
			}
			if got := tt.level.SlogLevel(); got != tt.slog {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.slog)
			}
			if got := tt.level.ZapLevel(); got != tt.zap {
				t.Errorf("ZapLevel() = %v, want %v", got, tt.zap)
			}
		})
	}
}

func TestLevel_SeverityNumbers(t *testing.T) {
	got := []observability.Level{
		observability.LevelVerbose,
		observability.LevelInfo,
		observability.LevelWarning,
		observability.LevelError,
	}
	want := []observability.Level{5, 9, 13, 17}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("severity numbers mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiObserver_FanOutInOrder(t *testing.T) {
	var order []string
	first := observerFunc(func(context.Context, observability.Event) { order = append(order, "first") })
	second := observerFunc(func(context.Context, observability.Event) { order = append(order, "second") })

	multi := observability.NewMultiObserver(first, nil, second)
	if multi.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (nil observers dropped)", multi.Len())
	}

	multi.OnEvent(context.Background(), event("orchestrator.chat.received", observability.LevelInfo))

	if diff := cmp.Diff([]string{"first", "second"}, order); diff != "" {
		t.Errorf("delivery order mismatch (-want +got):\n%s", diff)
	}
}

func TestLevelFilter(t *testing.T) {
	rec := &recorder{}
	filter := observability.LevelFilter{Min: observability.LevelInfo, Next: rec}

	ctx := context.Background()
	filter.OnEvent(ctx, event("orchestrator.chat.classified", observability.LevelVerbose))
	filter.OnEvent(ctx, event("orchestrator.chat.finalized", observability.LevelInfo))
	filter.OnEvent(ctx, event("orchestrator.error", observability.LevelError))

	want := []observability.EventType{"orchestrator.chat.finalized", "orchestrator.error"}
	if diff := cmp.Diff(want, rec.types); diff != "" {
		t.Errorf("filtered events mismatch (-want +got):\n%s", diff)
	}

	observability.LevelFilter{Min: observability.LevelInfo}.OnEvent(ctx, event("orchestrator.error", observability.LevelError))
}

func TestResolve(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	observability.RegisterObserver("resolve-first", first)
	observability.RegisterObserver("resolve-second", second)

	tests := []struct {
		name      string
		spec      string
		wantErr   bool
		delivered int
	}{
		{name: "empty spec", spec: ""},
		{name: "single name", spec: "resolve-first", delivered: 1},
		{name: "list with spaces", spec: "resolve-first, resolve-second", delivered: 2},
		{name: "trailing comma", spec: "resolve-second,", delivered: 1},
		{name: "unknown in list", spec: "resolve-first,missing", wantErr: true},
		{name: "unknown alone", spec: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first.types, second.types = nil, nil

			obs, err := observability.Resolve(tt.spec)
			if tt.wantErr {
				if !errors.Is(err, observability.ErrUnknownObserver) {
					t.Fatalf("Resolve(%q) error = %v, want ErrUnknownObserver", tt.spec, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.spec, err)
			}

			obs.OnEvent(context.Background(), event("orchestrator.chat.received", observability.LevelInfo))
			if got := len(first.types) + len(second.types); got != tt.delivered {
				t.Errorf("delivered %d events, want %d", got, tt.delivered)
			}
		})
	}
}

func TestSlogObserver_RespectsHandlerLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    observability.Level
		minLevel slog.Level
		logged   bool
	}{
		{name: "verbose at debug", level: observability.LevelVerbose, minLevel: slog.LevelDebug, logged: true},
		{name: "verbose at info", level: observability.LevelVerbose, minLevel: slog.LevelInfo, logged: false},
		{name: "info at warn", level: observability.LevelInfo, minLevel: slog.LevelWarn, logged: false},
		{name: "error at error", level: observability.LevelError, minLevel: slog.LevelError, logged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			observability.NewSlogObserver(logger).OnEvent(context.Background(), event("orchestrator.chat.scanned", tt.level))

			if logged := buf.Len() > 0; logged != tt.logged {
				t.Errorf("logged = %v, want %v (output %q)", logged, tt.logged, buf.String())
			}
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:   "orchestrator.approval.decided",
		Level:  observability.LevelInfo,
		Source: "orchestrator",
		Data:   map[string]any{"risk": "high", "approved": false, "command": "rm -rf /tmp"},
	})

	output := buf.String()
	for _, want := range []string{"msg=orchestrator.approval.decided", "source=orchestrator", "approved=false"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}

	approved := strings.Index(output, "approved=")
	command := strings.Index(output, "command=")
	risk := strings.Index(output, "risk=")
	if !(approved < command && command < risk) {
		t.Errorf("data attributes not sorted: %s", output)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"noop", "slog"} {
		if _, err := observability.GetObserver(name); err != nil {
			t.Errorf("GetObserver(%q) failed: %v", name, err)
		}
	}

	if _, err := observability.GetObserver("nonexistent"); !errors.Is(err, observability.ErrUnknownObserver) {
		t.Errorf("GetObserver(nonexistent) error = %v, want ErrUnknownObserver", err)
	}

	rec := &recorder{}
	observability.RegisterObserver("registry-custom", rec)
	obs, err := observability.GetObserver("registry-custom")
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}
	obs.OnEvent(context.Background(), event("orchestrator.backend.changed", observability.LevelInfo))
	if len(rec.types) != 1 {
		t.Errorf("custom observer received %d events, want 1", len(rec.types))
	}

	names := observability.ObserverNames()
	for _, want := range []string{"noop", "slog", "registry-custom"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("ObserverNames() = %v, missing %q", names, want)
		}
	}
}

type observerFunc func(context.Context, observability.Event)

func (f observerFunc) OnEvent(ctx context.Context, e observability.Event) { f(ctx, e) }
