//go:build gemini

package llm

import (
	"context"
	"errors"
	"strings"
	"sync"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiSDKClient uses the official Go SDK. Built only with -tags gemini;
// the default build uses GeminiHTTPClient.
type GeminiSDKClient struct {
	APIKey string
	Model  string

	once   sync.Once
	client *genai.Client
	err    error
}

func newGeminiClient(o Options) (Client, error) {
	return &GeminiSDKClient{APIKey: o.APIKey, Model: o.Model}, nil
}

func (c *GeminiSDKClient) Provider() string { return "gemini" }

func (c *GeminiSDKClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	c.once.Do(func() {
		c.client, c.err = genai.NewClient(context.Background(), option.WithAPIKey(c.APIKey))
	})
	if c.err != nil {
		return "", c.err
	}
	model := c.client.GenerativeModel(c.Model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if txt := firstText(resp); txt != "" {
		return txt, nil
	}
	return "", errors.New("gemini: no candidates")
}

// Close releases the underlying SDK client.
func (c *GeminiSDKClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, cand := range r.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
