package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	var gotReq map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"response": `{"decision":"review"}`,
			"done":     true,
		})
	})

	svc := NewLLMService(Config{BaseURL: srv.URL, Model: "qwen3:8b"})

	out, err := svc.Generate(context.Background(), "Assess this application", driven.GenerateOptions{
		MaxTokens:   256,
		Temperature: 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"decision":"review"}`, out)
	assert.Equal(t, "qwen3:8b", gotReq["model"])
	assert.Equal(t, false, gotReq["stream"])

	opts, ok := gotReq["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(256), opts["num_predict"])
}

func TestGenerate_NoOptionsBlock(t *testing.T) {
	var gotReq map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{"response": "ok", "done": true})
	})

	svc := NewLLMService(Config{BaseURL: srv.URL})

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.NotContains(t, gotReq, "options")
}

func TestChat(t *testing.T) {
	var gotReq struct {
		Messages []chatMessage `json:"messages"`
	}
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "A thin file has fewer than three tradelines."},
			"done":    true,
		})
	})

	svc := NewLLMService(Config{BaseURL: srv.URL})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "You are an underwriting assistant."},
		{Role: "user", Content: "What is a thin file?"},
	}, driven.GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A thin file has fewer than three tradelines.", out)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
}

func TestGenerate_ModelNotFound(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})

	svc := NewLLMService(Config{BaseURL: srv.URL, Model: "missing"})

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsFailureKind(err, domain.FailureModelNotFound))
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewLLMService(Config{BaseURL: url})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.GenerateOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsFailureKind(err, domain.FailureUnreachable))
}

func TestDefaults(t *testing.T) {
	svc := NewLLMService(Config{})

	assert.Equal(t, "qwen3:8b", svc.ModelName())
	assert.NoError(t, svc.Close())
}
