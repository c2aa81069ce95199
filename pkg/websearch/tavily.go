package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is a single ranked search snippet.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client defines the contract for a web-search backend.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// TavilyClient implements Client against the Tavily search API.
type TavilyClient struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Client     *http.Client
}

var _ Client = &TavilyClient{}

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		APIKey:     apiKey,
		BaseURL:    "https://api.tavily.com",
		MaxResults: 3,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tavilySearchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilySearchResponse struct {
	Results []Result `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	reqPayload := tavilySearchRequest{
		APIKey:     c.APIKey,
		Query:      query,
		MaxResults: c.MaxResults,
	}
	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/search"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp tavilySearchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return searchResp.Results, nil
}
