package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/quiz-agent/internal/config"
)

const (
	defaultTimeout       = 45 * time.Second
	defaultGroqBase      = "https://api.groq.com/openai"
	defaultOpenAIBase    = "https://api.openai.com"
	defaultAnthropicBase = "https://api.anthropic.com"
	defaultGeminiBase    = "https://generativelanguage.googleapis.com/v1beta"
)

var defaultModels = map[string]string{
	"groq":      "llama3-70b-8192",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-sonnet-latest",
	"gemini":    "gemini-1.5-flash",
}

// Options selects and configures a completion backend.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	HTTP     *http.Client
}

// New returns the client for o.Provider. An empty API key is accepted here;
// remote clients fail with ErrMissingAPIKey when first called.
func New(o Options) (Client, error) {
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Model == "" {
		o.Model = defaultModels[o.Provider]
	}
	switch o.Provider {
	case "groq":
		base := o.BaseURL
		if base == "" {
			base = defaultGroqBase
		}
		return &OpenAIClient{Name: "groq", APIKey: o.APIKey, Model: o.Model, BaseURL: base, HTTP: o.HTTP}, nil
	case "openai":
		return &OpenAIClient{Name: "openai", APIKey: o.APIKey, Model: o.Model, BaseURL: o.BaseURL, HTTP: o.HTTP}, nil
	case "anthropic":
		return &AnthropicClient{APIKey: o.APIKey, Model: o.Model, BaseURL: o.BaseURL, HTTP: o.HTTP}, nil
	case "gemini":
		return newGeminiClient(o)
	case "mock":
		return &MockClient{}, nil
	}
	return nil, fmt.Errorf("unsupported llm provider %q", o.Provider)
}

// NewFromConfig builds the client described by the llm section of the config.
func NewFromConfig(cfg config.LLMConfig) (Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return New(Options{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		HTTP:     &http.Client{Timeout: timeout},
	})
}
