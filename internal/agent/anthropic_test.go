package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnthropicTestServer(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewAnthropicProvider("test-key", "test-model")
	p.baseURL = srv.URL
	return p
}

func anthropicTextResponse(text string) anthropicResponse {
	return anthropicResponse{
		ID:      "msg_1",
		Type:    "message",
		Role:    "assistant",
		Content: []anthropicContent{{Type: "text", Text: text}},
	}
}

func TestAnthropicAvailable(t *testing.T) {
	assert.True(t, NewAnthropicProvider("key", "model").Available())
	assert.False(t, NewAnthropicProvider("", "model").Available())
}

func TestAnthropicGenerateCode(t *testing.T) {
	p := newAnthropicTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "a todo app")

		json.NewEncoder(w).Encode(anthropicTextResponse(
			`{"files": {"src/App.tsx": "code"}, "description": "a todo app", "features": ["tasks"]}`,
		))
	})

	result, err := p.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "a todo app"})
	require.NoError(t, err)

	assert.False(t, result.FallbackUsed)
	assert.Equal(t, "a todo app", result.Description)
	assert.Equal(t, "code", result.Files["src/App.tsx"])
	assert.Equal(t, "nextjs", result.Framework)
	assert.NotEmpty(t, result.ID)
}

func TestAnthropicGenerateCodeFallsBackOnProse(t *testing.T) {
	p := newAnthropicTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicTextResponse("I'm sorry, I can't produce that."))
	})

	result, err := p.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "anything"})
	require.NoError(t, err)

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, "no JSON object in response", result.FallbackReason)
	assert.NotEmpty(t, result.Files)
}

func TestAnthropicSurfacesAPIError(t *testing.T) {
	p := newAnthropicTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(anthropicResponse{
			Error: &anthropicError{Type: "rate_limit_error", Message: "quota exhausted"},
		})
	})

	_, err := p.GenerateCode(context.Background(), CodeGenerationRequest{Prompt: "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestAnthropicChat(t *testing.T) {
	p := newAnthropicTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.System, "Context: a todo app")

		json.NewEncoder(w).Encode(anthropicTextResponse("You could add due dates."))
	})

	reply, err := p.Chat(context.Background(), "what next?", "a todo app")
	require.NoError(t, err)
	assert.Equal(t, "You could add due dates.", reply)
}
