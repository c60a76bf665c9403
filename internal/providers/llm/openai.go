package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// Groq is served by the same client with a different base URL.
type OpenAIClient struct {
	Name    string
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func (c *OpenAIClient) Provider() string {
	if c.Name == "" {
		return "openai"
	}
	return c.Name
}

func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	body := map[string]any{
		"model":       c.Model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.APIKey}
	if err := postJSON(ctx, httpClientOrDefault(c.HTTP), c.Provider(), c.endpoint("/v1/chat/completions"), headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(c.Provider() + ": no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) endpoint(path string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = defaultOpenAIBase
	}
	return base + path
}
