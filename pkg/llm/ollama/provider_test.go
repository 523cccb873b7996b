package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock-ticker-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSendsSchemaAsFormat(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   got.Model,
			Message: ollamaMessage{Role: "assistant", Content: `{"score":"pass"}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	schema := &llm.Schema{
		Name:       "grade",
		Definition: map[string]interface{}{"type": "object"},
	}

	out, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		llm.WithTemperature(0), llm.WithSchema(schema))

	require.NoError(t, err)
	assert.Equal(t, `{"score":"pass"}`, out)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, map[string]interface{}{"type": "object"}, got.Format)
	assert.Equal(t, 0.0, got.Options.Temperature)
	assert.False(t, got.Stream)
}

func TestChatNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing")
	_, err := p.Generate(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
