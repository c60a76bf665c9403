//go:build !gemini

package llm

func newGeminiClient(o Options) (Client, error) {
	return &GeminiHTTPClient{APIKey: o.APIKey, Model: o.Model, BaseURL: o.BaseURL, HTTP: o.HTTP}, nil
}
