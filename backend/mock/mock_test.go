package mock_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/backend/mock"
	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/gate"
)

func request(lane protocol.Lane, content string) backend.Request {
	return backend.Request{
		Messages: []protocol.Message{protocol.NewMessage(protocol.Inbound, content, lane)},
		Lane:     lane,
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name     string
		lane     protocol.Lane
		content  string
		contains string
	}{
		{name: "architecture", lane: protocol.LaneStrategic, content: "How should I architect this?", contains: "layered architecture"},
		{name: "best practice", lane: protocol.LaneStrategic, content: "What should I do first?", contains: "best practices"},
		{name: "api design", lane: protocol.LaneStrategic, content: "Design a REST API", contains: "REST API design"},
		{name: "strategic default", lane: protocol.LaneStrategic, content: "hello", contains: "strategic guidance"},
		{name: "function", lane: protocol.LaneImplementation, content: "Implement a cache eviction function", contains: "processData"},
		{name: "endpoint", lane: protocol.LaneImplementation, content: "Create a REST endpoint", contains: "REST endpoint implementation"},
		{name: "debug", lane: protocol.LaneImplementation, content: "Fix this bug", contains: "debug this issue"},
		{name: "install", lane: protocol.LaneImplementation, content: "Install express", contains: "npm install express"},
		{name: "cleanup", lane: protocol.LaneImplementation, content: "Clean up temp files", contains: "`rm -rf /tmp`"},
		{name: "implementation default", lane: protocol.LaneImplementation, content: "hello", contains: "practical approach"},
	}

	b := mock.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := b.Complete(context.Background(), request(tt.lane, tt.content))
			if err != nil {
				t.Fatalf("Complete failed: %v", err)
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("reply %q does not contain %q", out, tt.contains)
			}
		})
	}
}

func TestComplete_CommandReplies(t *testing.T) {
	b := mock.New()

	tests := []struct {
		content string
		command string
	}{
		{content: "install express", command: "npm install express"},
		{content: "clean up temp files", command: "rm -rf /tmp"},
	}

	for _, tt := range tests {
		out, err := b.Complete(context.Background(), request(protocol.LaneImplementation, tt.content))
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if !gate.Detect(out) {
			t.Errorf("reply to %q proposes no command", tt.content)
		}
		if got, _ := gate.Extract(out); got != tt.command {
			t.Errorf("got command %q, want %q", got, tt.command)
		}
	}

	out, _ := b.Complete(context.Background(), request(protocol.LaneImplementation, "implement a function"))
	if gate.Detect(out) {
		t.Error("code sample reply proposes a command")
	}
}

func TestComplete_EmptyHistory(t *testing.T) {
	_, err := mock.New().Complete(context.Background(), backend.Request{Lane: protocol.LaneStrategic})
	if !errors.Is(err, backend.ErrEmptyResponse) {
		t.Errorf("got %v, want ErrEmptyResponse", err)
	}
}

func TestComplete_DelayHonoursContext(t *testing.T) {
	b := mock.New(mock.WithDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := b.Complete(ctx, request(protocol.LaneStrategic, "hello"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestProviderRegistered(t *testing.T) {
	cfg := backend.Config{Provider: mock.Name, ResponseDelayMillis: 1}
	b, err := backend.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Name() != mock.Name {
		t.Errorf("got name %q, want %q", b.Name(), mock.Name)
	}
}
