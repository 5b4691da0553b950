package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/extensions/anthropic"
	"github.com/tailored-agentic-units/ucf/orchestrator"
)

func newServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()

	cfg := orchestrator.DefaultConfig()
	cfg.Observer = "noop"
	o, err := orchestrator.New(&cfg)
	require.NoError(t, err)
	return o
}

func TestInstall_SwapsBackend(t *testing.T) {
	srv := newServer(t, "Hello from the API")
	o := newOrchestrator(t)
	ctx := context.Background()

	ext := anthropic.New(backend.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, o.InstallExtension(ctx, ext))

	assert.Equal(t, "anthropic", o.Backend().Name())
	assert.Equal(t, "claude-opus-4-1-20250805", ext.Model())

	reply, err := o.Chat(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello from the API", reply.Content)
}

func TestUninstall_RestoresPreviousBackend(t *testing.T) {
	srv := newServer(t, "unused")
	o := newOrchestrator(t)
	ctx := context.Background()

	previous := backend.NewFunc("previous", func(context.Context, backend.Request) (string, error) {
		return "back again", nil
	})
	o.SetBackend(previous)

	require.NoError(t, o.InstallExtension(ctx, anthropic.New(backend.Config{APIKey: "test-key", BaseURL: srv.URL})))
	removed, err := o.UninstallExtension(ctx, anthropic.Name)
	require.NoError(t, err)
	require.True(t, removed)

	assert.Equal(t, "previous", o.Backend().Name())
}

func TestUninstall_LeavesForeignBackend(t *testing.T) {
	srv := newServer(t, "unused")
	o := newOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, o.InstallExtension(ctx, anthropic.New(backend.Config{APIKey: "test-key", BaseURL: srv.URL})))

	o.SetBackend(backend.NewFunc("later", func(context.Context, backend.Request) (string, error) {
		return "", nil
	}))
	_, err := o.UninstallExtension(ctx, anthropic.Name)
	require.NoError(t, err)

	assert.Equal(t, "later", o.Backend().Name())
}

func TestInstall_MissingAPIKey(t *testing.T) {
	t.Setenv(anthropic.APIKeyEnv, "")
	o := newOrchestrator(t)
	ctx := context.Background()

	err := o.InstallExtension(ctx, anthropic.New(backend.Config{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrMissingAPIKey))

	assert.Equal(t, "mock", o.Backend().Name())
	assert.Empty(t, o.Extensions())
}

func TestInstall_KeyFromEnvironment(t *testing.T) {
	srv := newServer(t, "env key works")
	t.Setenv(anthropic.APIKeyEnv, "test-key")
	o := newOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, o.InstallExtension(ctx, anthropic.New(backend.Config{BaseURL: srv.URL, Model: "claude-test"})))

	reply, err := o.Chat(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "env key works", reply.Content)
}
