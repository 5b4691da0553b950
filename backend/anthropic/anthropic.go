// Package anthropic implements a completion backend over the Anthropic
// Messages API. Importing it registers the "anthropic" provider.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

const (
	// Name is the provider and backend name.
	Name = "anthropic"

	DefaultBaseURL     = "https://api.anthropic.com/v1"
	DefaultModel       = "claude-opus-4-1-20250805"
	DefaultMaxTokens   = 1024
	DefaultTimeout     = 60 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second

	apiVersion = "2023-06-01"
)

func init() {
	backend.RegisterProvider(Name, func(cfg *backend.Config) (backend.Backend, error) {
		return New(cfg)
	})
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseDelay sets the first backoff interval. Later intervals double.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// Client is a Backend backed by the Anthropic Messages API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	prompts     map[protocol.Lane]string
	maxAttempts int
	baseDelay   time.Duration
	http        *http.Client
	sleep       func(ctx context.Context, d time.Duration) error
}

// New creates a Client from cfg. The API key comes from cfg.APIKey or the
// environment variable named by cfg.APIKeyEnv.
func New(cfg *backend.Config, opts ...Option) (*Client, error) {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", backend.ErrMissingAPIKey, Name)
	}

	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: cfg.Temperature,
		prompts:     cfg.SystemPrompts,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		http:        &http.Client{Timeout: DefaultTimeout},
		sleep:       sleepContext,
	}
	if cfg.BaseURL != "" {
		c.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Model != "" {
		c.model = cfg.Model
	}
	if cfg.MaxTokens > 0 {
		c.maxTokens = cfg.MaxTokens
	}
	if cfg.MaxRetries > 0 {
		c.maxAttempts = cfg.MaxRetries
	}
	if cfg.TimeoutSeconds > 0 {
		c.http.Timeout = cfg.Timeout()
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string { return Name }

// Model returns the model requests are sent to.
func (c *Client) Model() string { return c.model }

// Complete sends the conversation to the Messages API. Rate limiting and
// server errors are retried up to the configured attempt count with
// exponential backoff; a Retry-After header overrides the computed delay.
func (c *Client) Complete(ctx context.Context, req backend.Request) (string, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var be *backend.Error
		if !errors.As(err, &be) || !be.Retryable() || attempt == c.maxAttempts {
			break
		}

		wait := c.baseDelay * time.Duration(1<<(attempt-1))
		if be.RetryAfter > 0 {
			wait = be.RetryAfter
		}
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) buildRequest(req backend.Request) messagesRequest {
	out := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  convertMessages(req.Messages),
		System:    backend.SystemPrompt(req.Lane, c.prompts),
	}
	if req.MaxTokens > 0 {
		out.MaxTokens = req.MaxTokens
	}
	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		out.Temperature = &temperature
	}
	return out
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &backend.Error{Backend: Name, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &backend.Error{Backend: Name, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, data)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: %s", backend.ErrEmptyResponse, Name)
	}
	return text.String(), nil
}

func statusError(resp *http.Response, data []byte) *backend.Error {
	var parsed errorResponse
	detail := ""
	if json.Unmarshal(data, &parsed) == nil {
		detail = parsed.Error.Message
	}

	var err error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		err = fmt.Errorf("bad request: %s", orDefault(detail, "invalid request format"))
	case http.StatusUnauthorized:
		err = errors.New("authentication failed: invalid API key")
	case http.StatusTooManyRequests:
		err = fmt.Errorf("rate limited: %s", orDefault(detail, "too many requests"))
	case http.StatusInternalServerError, 529:
		err = fmt.Errorf("server error: %s", orDefault(detail, "service unavailable"))
	default:
		err = fmt.Errorf("api error: %s", orDefault(detail, resp.Status))
	}

	return &backend.Error{
		Backend:    Name,
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Err:        err,
	}
}

// convertMessages maps the log to API roles. Consecutive messages with the
// same role are joined, since a failed round can leave two inbound messages
// adjacent.
func convertMessages(msgs []protocol.Message) []message {
	out := make([]message, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Direction == protocol.Outbound {
			role = "assistant"
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, message{Role: role, Content: m.Content})
	}
	return out
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
