package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	var gotBody tavilySearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(tavilySearchResponse{
			Results: []Result{
				{Title: "first", URL: "https://a", Content: "snippet one"},
				{Title: "second", URL: "https://b", Content: "snippet two"},
			},
		})
	}))
	defer server.Close()

	client := NewTavilyClient("test-key")
	client.BaseURL = server.URL

	results, err := client.Search(context.Background(), "latest go release")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotBody.APIKey)
	assert.Equal(t, "latest go release", gotBody.Query)
	assert.Equal(t, 3, gotBody.MaxResults)

	require.Len(t, results, 2)
	assert.Equal(t, "snippet one", results[0].Content)
	assert.Equal(t, "second", results[1].Title)
}

func TestTavilySearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client := NewTavilyClient("bad-key")
	client.BaseURL = server.URL

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
