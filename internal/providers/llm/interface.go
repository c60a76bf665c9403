package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by a remote client whose credential is empty.
var ErrMissingAPIKey = errors.New("llm: API key is not configured")

// GenerateOptions are the sampling parameters sent with a completion request.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Client is the completion service used by the answer composer.
// Any provider implementation should satisfy this.
type Client interface {
	// Provider names the backend, for logs and metrics.
	Provider() string
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
