package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/time/rate"
)

const defaultEncyclopediaEndpoint = "https://en.wikipedia.org/w/api.php"

// EncyclopediaOptions tunes EncyclopediaTool.
type EncyclopediaOptions struct {
	Endpoint  string
	Sentences int
	RateLimit float64
	CacheSize int
	Client    *http.Client
}

// EncyclopediaTool resolves a free-text query to the best matching Wikipedia
// article and returns the first few sentences of its introduction.
type EncyclopediaTool struct {
	Endpoint  string
	Sentences int

	client  *http.Client
	limiter *rate.Limiter
	cache   *lookupCache
}

func NewEncyclopediaTool(opts EncyclopediaOptions) *EncyclopediaTool {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultEncyclopediaEndpoint
	}
	sentences := opts.Sentences
	if sentences <= 0 {
		sentences = 3
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &EncyclopediaTool{
		Endpoint:  endpoint,
		Sentences: sentences,
		client:    client,
		limiter:   newLimiter(opts.RateLimit),
		cache:     newLookupCache(opts.CacheSize),
	}
}

func (t *EncyclopediaTool) Name() string { return EncyclopediaName }

func (t *EncyclopediaTool) Invoke(ctx context.Context, query string) Result {
	q := strings.TrimSpace(query)
	if q == "" {
		return Failure(t.Name(), errors.New("error searching Wikipedia: empty query"))
	}
	if text, ok := t.cache.get(q); ok {
		return TextResult(text)
	}
	summary, err := t.summary(ctx, q)
	if err != nil {
		return Failure(t.Name(), fmt.Errorf("error searching Wikipedia: %w", err))
	}
	t.cache.put(q, summary)
	return TextResult(summary)
}

func (t *EncyclopediaTool) summary(ctx context.Context, query string) (string, error) {
	var found struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	err := t.call(ctx, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"srprop":   {""},
	}, &found)
	if err != nil {
		return "", err
	}
	if len(found.Query.Search) == 0 {
		return "", fmt.Errorf("no encyclopedia page matches %q", query)
	}
	title := found.Query.Search[0].Title

	var page struct {
		Query struct {
			Pages []struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
				Missing bool   `json:"missing"`
			} `json:"pages"`
		} `json:"query"`
	}
	err = t.call(ctx, url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"exsentences": {strconv.Itoa(t.Sentences)},
		"redirects":   {"1"},
		"titles":      {title},
	}, &page)
	if err != nil {
		return "", err
	}
	if len(page.Query.Pages) == 0 || page.Query.Pages[0].Missing {
		return "", fmt.Errorf("page %q does not exist", title)
	}
	extract := strings.TrimSpace(page.Query.Pages[0].Extract)
	if extract == "" {
		return "", fmt.Errorf("page %q has no summary", title)
	}
	// exsentences already bounds the extract; the local cap only applies when
	// a mirror ignores it.
	return FirstSentences(extract, t.Sentences), nil
}

func (t *EncyclopediaTool) call(ctx context.Context, params url.Values, out any) error {
	if err := wait(ctx, t.limiter); err != nil {
		return err
	}
	params.Set("format", "json")
	params.Set("formatversion", "2")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "quiz-agent/1.0 (https://github.com/example/quiz-agent)")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia http %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wikipedia response: %w", err)
	}
	return nil
}

// FirstSentences returns the first n sentences of text. A sentence ends at
// '.', '!' or '?' followed by whitespace or the end of input. Periods closing
// an abbreviation ("F.", "U.S.", "Dr.") do not end a sentence.
func FirstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	count := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && abbreviation(runes[:i]) {
			continue
		}
		count++
		if count == n {
			return string(runes[:i+1])
		}
	}
	return text
}

var titleAbbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "st": true,
	"jr": true, "sr": true, "vs": true, "mt": true, "gen": true, "gov": true,
	"sen": true, "rev": true,
}

// abbreviation reports whether the word just before a period is an initial,
// a dotted acronym or a common title.
func abbreviation(before []rune) bool {
	start := len(before)
	for start > 0 && !unicode.IsSpace(before[start-1]) {
		start--
	}
	word := strings.TrimLeft(string(before[start:]), "(\"'")
	if word == "" {
		return false
	}
	if r := []rune(word); len(r) == 1 && unicode.IsUpper(r[0]) {
		return true
	}
	if strings.Contains(word, ".") && strings.IndexFunc(word, func(r rune) bool {
		return r != '.' && !unicode.IsLetter(r)
	}) < 0 {
		return true
	}
	return titleAbbreviations[strings.ToLower(word)]
}
