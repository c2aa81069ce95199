package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"adaptive-rag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSerializesZeroTemperature(t *testing.T) {
	var rawBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var err error
		rawBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: `{"binary_score": "yes"}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	out, err := provider.Chat(
		context.Background(),
		[]llm.Message{{Role: "user", Content: "grade this"}},
		llm.WithTemperature(0),
		llm.WithJSONFormat(),
	)
	require.NoError(t, err)
	assert.Equal(t, `{"binary_score": "yes"}`, out)

	// Assertions run against the raw wire payload, not a re-decode into
	// the request struct.
	var payload struct {
		Format  string                     `json:"format"`
		Options map[string]json.RawMessage `json:"options"`
	}
	require.NoError(t, json.Unmarshal(rawBody, &payload))

	raw, ok := payload.Options["temperature"]
	require.True(t, ok, "temperature must be present in the request payload")
	var temp float64
	require.NoError(t, json.Unmarshal(raw, &temp))
	assert.Zero(t, temp)
	assert.Equal(t, "json", payload.Format)
}

func TestChatDefaultsTemperatureWhenUnset(t *testing.T) {
	var captured ollamaChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "hi"},
			Done:    true,
		})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	_, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})
	require.NoError(t, err)

	require.NotNil(t, captured.Options)
	assert.InDelta(t, 0.7, captured.Options.Temperature, 0.001)
	assert.Empty(t, captured.Format)
}
