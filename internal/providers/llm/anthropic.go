package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type AnthropicClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func (c *AnthropicClient) Provider() string { return "anthropic" }

func (c *AnthropicClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body := map[string]any{
		"model":       c.Model,
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
		"messages": []map[string]any{{
			"role":    "user",
			"content": []map[string]string{{"type": "text", "text": prompt}},
		}},
	}
	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = defaultAnthropicBase
	}
	if err := postJSON(ctx, httpClientOrDefault(c.HTTP), c.Provider(), base+"/v1/messages", headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("anthropic: no content")
	}
	return resp.Content[0].Text, nil
}
