package llm

import (
	"context"
	"sync"
)

// MockClient returns a canned answer and records every prompt it receives.
type MockClient struct {
	Answer string
	Err    error

	mu      sync.Mutex
	prompts []string
	options []GenerateOptions
}

func (m *MockClient) Provider() string { return "mock" }

func (m *MockClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, opts)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.Answer == "" {
		return "I don't know.", nil
	}
	return m.Answer, nil
}

// Prompts returns a copy of the prompts seen so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Options returns a copy of the options seen so far.
func (m *MockClient) Options() []GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateOptions(nil), m.options...)
}
