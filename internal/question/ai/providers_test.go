package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerator_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": `{"isCorrect":true,"feedback":"ok"}`},
					"finish_reason": "stop",
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	g, err := NewOpenAIGenerator(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), "judge this")
	require.NoError(t, err)
	assert.Equal(t, `{"isCorrect":true,"feedback":"ok"}`, text)
}

func TestOpenAIGenerator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "boom", "type": "server_error"},
		})
	}))
	t.Cleanup(server.Close)

	g, err := NewOpenAIGenerator(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "p")
	assert.Error(t, err)
}

func TestAnthropicGenerator_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"question":"2+3?",`},
				{"type": "text", "text": `"answer":"5"}`},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	t.Cleanup(server.Close)

	g, err := NewAnthropicGenerator(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, `{"question":"2+3?","answer":"5"}`, text)
}

func TestSDKProviders_RequireAPIKey(t *testing.T) {
	_, err := NewOpenAIGenerator(Config{})
	assert.Error(t, err)
	_, err = NewAnthropicGenerator(Config{})
	assert.Error(t, err)
	_, err = NewGeminiGenerator(context.Background(), Config{})
	assert.Error(t, err)
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		provider string
		input    string
		expected string
	}{
		{ProviderGemini, "", "gemini-2.0-flash"},
		{ProviderGemini, "gemini-pro", "gemini-2.0-pro"},
		{ProviderAnthropic, "claude-sonnet", "claude-sonnet-4-20250514"},
		{ProviderOpenAI, "", "gpt-4o-mini"},
		{ProviderOpenAI, "gpt-4o", "gpt-4o"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolveModel(tt.provider, tt.input), "%s/%s", tt.provider, tt.input)
	}
}

func TestNewTextGenerator(t *testing.T) {
	ctx := context.Background()

	g, err := NewTextGenerator(ctx, Config{GeneratorURL: "http://localhost:9000"}, zerolog.Nop())
	require.NoError(t, err)
	inst, ok := g.(*Instrumented)
	require.True(t, ok)
	assert.Equal(t, ProviderHTTP, inst.provider)
	assert.Equal(t, defaultTimeout, inst.timeout)

	_, err = NewTextGenerator(ctx, Config{Provider: "carrier-pigeon"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewTextGenerator(ctx, Config{Provider: ProviderOpenAI}, zerolog.Nop())
	assert.Error(t, err)
}
