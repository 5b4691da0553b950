package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/backend/anthropic"
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

type captured struct {
	Model       string   `json:"model"`
	MaxTokens   int      `json:"max_tokens"`
	System      string   `json:"system"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newClient(t *testing.T, url string, waits *[]time.Duration) *anthropic.Client {
	t.Helper()
	cfg := backend.Config{APIKey: "test-key", BaseURL: url}
	c, err := anthropic.New(&cfg, anthropic.WithSleep(func(_ context.Context, d time.Duration) error {
		if waits != nil {
			*waits = append(*waits, d)
		}
		return nil
	}), anthropic.WithBaseDelay(time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func conversation() backend.Request {
	return backend.Request{
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.Inbound, "first", protocol.LaneImplementation),
			protocol.NewMessage(protocol.Inbound, "second", protocol.LaneImplementation),
			protocol.NewMessage(protocol.Outbound, "reply", protocol.LaneImplementation),
			protocol.NewMessage(protocol.Inbound, "third", protocol.LaneImplementation),
		},
		Lane: protocol.LaneImplementation,
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := anthropic.New(&backend.Config{})
	if !errors.Is(err, backend.ErrMissingAPIKey) {
		t.Errorf("got %v, want ErrMissingAPIKey", err)
	}
}

func TestNew_APIKeyFromEnv(t *testing.T) {
	t.Setenv("UCF_ANTHROPIC_TEST_KEY", "env-key")
	c, err := anthropic.New(&backend.Config{APIKeyEnv: "UCF_ANTHROPIC_TEST_KEY", Model: "claude-test"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Model() != "claude-test" {
		t.Errorf("got model %q", c.Model())
	}
	if c.Name() != anthropic.Name {
		t.Errorf("got name %q", c.Name())
	}
}

func TestComplete(t *testing.T) {
	var got captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("got path %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("got api key %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("got version %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"Run "},{"type":"text","text":"` + "`ls -la`" + `"}]}`))
	}))
	defer server.Close()

	c := newClient(t, server.URL, nil)
	out, err := c.Complete(context.Background(), conversation())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "Run `ls -la`" {
		t.Errorf("got %q", out)
	}

	if got.Model != anthropic.DefaultModel {
		t.Errorf("got model %q", got.Model)
	}
	if got.MaxTokens != anthropic.DefaultMaxTokens {
		t.Errorf("got max tokens %d", got.MaxTokens)
	}
	if got.System != backend.SystemPrompt(protocol.LaneImplementation, nil) {
		t.Errorf("got system prompt %q", got.System)
	}
	if got.Temperature != nil {
		t.Errorf("temperature sent without configuration: %v", *got.Temperature)
	}

	type turn struct{ Role, Content string }
	var turns []turn
	for _, m := range got.Messages {
		turns = append(turns, turn{m.Role, m.Content})
	}
	want := []turn{
		{"user", "first\n\nsecond"},
		{"assistant", "reply"},
		{"user", "third"},
	}
	if diff := cmp.Diff(want, turns); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_RequestOverrides(t *testing.T) {
	var got captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	cfg := backend.Config{
		APIKey:        "test-key",
		BaseURL:       server.URL + "/",
		SystemPrompts: map[protocol.Lane]string{protocol.LaneStrategic: "plan carefully"},
	}
	c, err := anthropic.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	req := backend.Request{
		Messages:    []protocol.Message{protocol.NewMessage(protocol.Inbound, "design", protocol.LaneStrategic)},
		Lane:        protocol.LaneStrategic,
		MaxTokens:   99,
		Temperature: 0.5,
	}
	if _, err := c.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got.System != "plan carefully" {
		t.Errorf("got system %q", got.System)
	}
	if got.MaxTokens != 99 {
		t.Errorf("got max tokens %d", got.MaxTokens)
	}
	if got.Temperature == nil || *got.Temperature != 0.5 {
		t.Errorf("got temperature %v", got.Temperature)
	}
}

func TestComplete_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
		case 2:
			w.WriteHeader(529)
		default:
			w.Write([]byte(`{"content":[{"type":"text","text":"done"}]}`))
		}
	}))
	defer server.Close()

	var waits []time.Duration
	c := newClient(t, server.URL, &waits)

	out, err := c.Complete(context.Background(), conversation())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "done" {
		t.Errorf("got %q", out)
	}
	if calls.Load() != 3 {
		t.Errorf("got %d calls, want 3", calls.Load())
	}
	if diff := cmp.Diff([]time.Duration{2 * time.Second, 2 * time.Millisecond}, waits); diff != "" {
		t.Errorf("waits mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newClient(t, server.URL, nil)
	_, err := c.Complete(context.Background(), conversation())

	var be *backend.Error
	if !errors.As(err, &be) {
		t.Fatalf("got %v, want *backend.Error", err)
	}
	if be.StatusCode != http.StatusTooManyRequests {
		t.Errorf("got status %d", be.StatusCode)
	}
	if calls.Load() != anthropic.DefaultMaxAttempts {
		t.Errorf("got %d calls, want %d", calls.Load(), anthropic.DefaultMaxAttempts)
	}
}

func TestComplete_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"max_tokens required"}}`, message: "anthropic backend: status 400: bad request: max_tokens required"},
		{name: "unauthorized", status: http.StatusUnauthorized, message: "anthropic backend: status 401: authentication failed: invalid API key"},
		{name: "not found", status: http.StatusNotFound, message: "anthropic backend: status 404: api error: 404 Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newClient(t, server.URL, nil)
			_, err := c.Complete(context.Background(), conversation())
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.message {
				t.Errorf("got %q, want %q", err.Error(), tt.message)
			}
			if calls.Load() != 1 {
				t.Errorf("non-retryable status retried: %d calls", calls.Load())
			}
		})
	}
}

func TestComplete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	c := newClient(t, server.URL, nil)
	_, err := c.Complete(context.Background(), conversation())
	if !errors.Is(err, backend.ErrEmptyResponse) {
		t.Errorf("got %v, want ErrEmptyResponse", err)
	}
}

func TestComplete_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := backend.Config{APIKey: "test-key", BaseURL: server.URL}
	c, err := anthropic.New(&cfg, anthropic.WithBaseDelay(time.Hour))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Complete(ctx, conversation())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestProviderRegistered(t *testing.T) {
	cfg := backend.Config{Provider: anthropic.Name, APIKey: "k"}
	b, err := backend.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Name() != anthropic.Name {
		t.Errorf("got name %q", b.Name())
	}
}
