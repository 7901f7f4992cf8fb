package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoassist/server/internal/assistant/model"
	errx "github.com/geoassist/server/internal/core/error"
)

func testConfig(baseURL string) model.LLMConfig {
	return model.LLMConfig{
		BaseURL:        baseURL,
		Model:          "claude-sonnet-4-20250514",
		MaxTokens:      1000,
		Version:        "2023-06-01",
		TimeoutSeconds: 5,
	}
}

func firstBlockText(t *testing.T, v any) string {
	t.Helper()
	blocks, ok := v.([]any)
	require.True(t, ok)
	require.NotEmpty(t, blocks)
	block, ok := blocks[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text", block["type"])
	text, _ := block["text"].(string)
	return text
}

func TestComplete_RequestShape(t *testing.T) {
	var gotBody map[string]any
	var gotHeader http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{}"}]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Complete(context.Background(), "sk-test", "system text", "user text")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", gotHeader.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", gotHeader.Get("anthropic-version"))
	assert.Equal(t, "true", gotHeader.Get("anthropic-dangerous-direct-browser-access"))
	assert.Contains(t, gotHeader.Get("Content-Type"), "application/json")

	assert.Equal(t, "claude-sonnet-4-20250514", gotBody["model"])
	assert.Equal(t, float64(1000), gotBody["max_tokens"])
	assert.Equal(t, "system text", firstBlockText(t, gotBody["system"]))

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	first, ok := msgs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "user text", firstBlockText(t, first["content"]))
}

func TestComplete_UsesFirstContentBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"first"},{"type":"text","text":"second"}]}`))
	}))
	defer srv.Close()

	text, err := New(testConfig(srv.URL)).Complete(context.Background(), "k", "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "first", text)
}

func TestComplete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	text, err := New(testConfig(srv.URL)).Complete(context.Background(), "k", "s", "u")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestComplete_ServiceErrorWithPayloadMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Complete(context.Background(), "k", "s", "u")
	require.Error(t, err)
	assert.Equal(t, errx.KindService, errx.KindOf(err))
	assert.Equal(t, "rate limit exceeded", errx.UserMessage(err))
}

func TestComplete_ServiceErrorWithoutPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Complete(context.Background(), "k", "s", "u")
	require.Error(t, err)
	assert.Equal(t, errx.KindService, errx.KindOf(err))
	assert.Equal(t, "API request failed (502)", errx.UserMessage(err))
}

func TestComplete_TransportFailureHasGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(testConfig(srv.URL)).Complete(context.Background(), "k", "s", "u")
	require.Error(t, err)
	assert.Equal(t, errx.KindService, errx.KindOf(err))
	// The dial detail must not leak into the transcript-facing message.
	assert.Equal(t, errx.AIUnreachableMessage, errx.UserMessage(err))
	assert.NotContains(t, errx.UserMessage(err), "connection refused")
}
