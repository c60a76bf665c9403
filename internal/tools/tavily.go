package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey     string
	Endpoint   string
	MaxResults int
	client     *http.Client
}

func NewTavily(apiKey, endpoint string, maxResults int, client *http.Client) *Tavily {
	if endpoint == "" {
		endpoint = defaultTavilyEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Tavily{APIKey: apiKey, Endpoint: endpoint, MaxResults: maxResults, client: client}
}

func (t *Tavily) Search(ctx context.Context, query string) ([]SearchHit, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	body := map[string]any{
		"query":        query,
		"api_key":      t.APIKey,
		"search_depth": "basic",
	}
	if t.MaxResults > 0 {
		body["max_results"] = t.MaxResults
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(response.Results))
	for _, r := range response.Results {
		hits = append(hits, SearchHit{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return hits, nil
}
