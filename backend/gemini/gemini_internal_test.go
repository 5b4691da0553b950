package gemini

import (
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

func TestConvertMessages(t *testing.T) {
	msgs := []protocol.Message{
		protocol.NewMessage(protocol.Inbound, "question", protocol.LaneStrategic),
		protocol.NewMessage(protocol.Outbound, "answer", protocol.LaneStrategic),
	}

	contents := convertMessages(msgs)
	if len(contents) != 2 {
		t.Fatalf("got %d contents, want 2", len(contents))
	}
	if contents[0].Role != string(genai.RoleUser) || contents[1].Role != string(genai.RoleModel) {
		t.Errorf("got roles %q, %q", contents[0].Role, contents[1].Role)
	}
	if contents[1].Parts[0].Text != "answer" {
		t.Errorf("got text %q", contents[1].Parts[0].Text)
	}
}

func TestGenerateConfig(t *testing.T) {
	c := &Client{model: DefaultModel, maxTokens: 512}

	cfg := c.generateConfig(backend.Request{Lane: protocol.LaneImplementation})
	if cfg.MaxOutputTokens != 512 {
		t.Errorf("got max tokens %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature != nil {
		t.Error("temperature set without configuration")
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != backend.SystemPrompt(protocol.LaneImplementation, nil) {
		t.Error("system instruction does not carry the lane prompt")
	}

	cfg = c.generateConfig(backend.Request{Lane: protocol.LaneStrategic, MaxTokens: 64, Temperature: 0.25})
	if cfg.MaxOutputTokens != 64 {
		t.Errorf("got max tokens %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.25 {
		t.Errorf("got temperature %v", cfg.Temperature)
	}
}

func TestWrapError(t *testing.T) {
	err := wrapError(genai.APIError{Code: 429, Message: "quota"})

	var be *backend.Error
	if !errors.As(err, &be) {
		t.Fatalf("got %T, want *backend.Error", err)
	}
	if be.StatusCode != 429 || !be.Retryable() {
		t.Errorf("got status %d retryable %v", be.StatusCode, be.Retryable())
	}

	err = wrapError(errors.New("dial tcp: refused"))
	if !errors.As(err, &be) || be.StatusCode != 0 {
		t.Errorf("got %v", err)
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New(t.Context(), &backend.Config{})
	if !errors.Is(err, backend.ErrMissingAPIKey) {
		t.Errorf("got %v, want ErrMissingAPIKey", err)
	}
}
