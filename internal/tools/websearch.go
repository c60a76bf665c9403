package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// SearchHit is one result from a search backend.
type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

// SearchProvider executes a web query.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// SearchOptions tunes WebSearchTool.
type SearchOptions struct {
	MaxResults int
	// RateLimit is requests per second; zero disables pacing.
	RateLimit float64
	CacheSize int
}

// WebSearchTool returns the top hits as "title: snippet" lines.
type WebSearchTool struct {
	Provider   SearchProvider
	MaxResults int

	limiter *rate.Limiter
	cache   *lookupCache
}

func NewWebSearchTool(p SearchProvider, opts SearchOptions) *WebSearchTool {
	max := opts.MaxResults
	if max <= 0 {
		max = 3
	}
	return &WebSearchTool{
		Provider:   p,
		MaxResults: max,
		limiter:    newLimiter(opts.RateLimit),
		cache:      newLookupCache(opts.CacheSize),
	}
}

func (t *WebSearchTool) Name() string { return WebSearchName }

func (t *WebSearchTool) Invoke(ctx context.Context, query string) Result {
	q := strings.TrimSpace(query)
	if q == "" {
		return Failure(t.Name(), errors.New("error searching web: empty query"))
	}
	if text, ok := t.cache.get(q); ok {
		return TextResult(text)
	}
	if t.Provider == nil {
		return Failure(t.Name(), errors.New("error searching web: no search provider configured"))
	}
	if err := wait(ctx, t.limiter); err != nil {
		return Failure(t.Name(), fmt.Errorf("error searching web: %w", err))
	}
	hits, err := t.Provider.Search(ctx, q)
	if err != nil {
		return Failure(t.Name(), fmt.Errorf("error searching web: %w", err))
	}
	text := FormatHits(hits, t.MaxResults)
	t.cache.put(q, text)
	return TextResult(text)
}

// FormatHits renders at most max hits as "title: snippet" lines.
func FormatHits(hits []SearchHit, max int) string {
	if max <= 0 || max > len(hits) {
		max = len(hits)
	}
	lines := make([]string, 0, max)
	for _, h := range hits {
		if len(lines) == max {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %s", h.Title, h.Snippet))
	}
	return strings.Join(lines, "\n")
}
