// Package gemini implements a completion backend over the Gemini API using
// google.golang.org/genai. Importing it registers the "gemini" provider.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

const (
	// Name is the provider and backend name.
	Name = "gemini"

	DefaultModel     = "gemini-2.5-flash"
	DefaultMaxTokens = 1024
)

func init() {
	backend.RegisterProvider(Name, func(cfg *backend.Config) (backend.Backend, error) {
		return New(context.Background(), cfg)
	})
}

// Client is a Backend backed by the Gemini API.
type Client struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
	prompts     map[protocol.Lane]string
}

// New creates a Client from cfg. The API key comes from cfg.APIKey or the
// environment variable named by cfg.APIKeyEnv.
func New(ctx context.Context, cfg *backend.Config) (*Client, error) {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", backend.ErrMissingAPIKey, Name)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	c := &Client{
		client:      client,
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: cfg.Temperature,
		prompts:     cfg.SystemPrompts,
	}
	if cfg.Model != "" {
		c.model = cfg.Model
	}
	if cfg.MaxTokens > 0 {
		c.maxTokens = cfg.MaxTokens
	}
	return c, nil
}

func (c *Client) Name() string { return Name }

// Model returns the model requests are sent to.
func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, req backend.Request) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, convertMessages(req.Messages), c.generateConfig(req))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", wrapError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: %s", backend.ErrEmptyResponse, Name)
	}
	return text, nil
}

func (c *Client) generateConfig(req backend.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.maxTokens),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if prompt := backend.SystemPrompt(req.Lane, c.prompts); prompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt, genai.RoleUser)
	}

	temperature := c.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		t := float32(temperature)
		cfg.Temperature = &t
	}
	return cfg
}

func convertMessages(msgs []protocol.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Direction == protocol.Outbound {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &backend.Error{Backend: Name, StatusCode: apiErr.Code, Err: err}
	}
	return &backend.Error{Backend: Name, Err: err}
}
