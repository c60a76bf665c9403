package tools

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// lookupCache memoizes successful query -> text lookups. A nil cache is a no-op.
type lookupCache struct {
	entries *lru.Cache[string, string]
}

func newLookupCache(size int) *lookupCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil
	}
	return &lookupCache{entries: c}
}

func (c *lookupCache) get(query string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.entries.Get(cacheKey(query))
}

func (c *lookupCache) put(query, text string) {
	if c == nil {
		return
	}
	c.entries.Add(cacheKey(query), text)
}

func cacheKey(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// newLimiter returns a limiter allowing perSecond requests, or nil when pacing is off.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
