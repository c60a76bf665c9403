package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GeminiHTTPClient calls the Generative Language REST API directly.
type GeminiHTTPClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func (c *GeminiHTTPClient) Provider() string { return "gemini" }

func (c *GeminiHTTPClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = defaultGeminiBase
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, url.PathEscape(c.Model), url.QueryEscape(c.APIKey))
	gen := map[string]any{"temperature": opts.Temperature}
	if opts.MaxTokens > 0 {
		gen["maxOutputTokens"] = opts.MaxTokens
	}
	body := map[string]any{
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]string{{"text": prompt}},
		}},
		"generationConfig": gen,
	}
	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := postJSON(ctx, httpClientOrDefault(c.HTTP), c.Provider(), endpoint, nil, body, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
