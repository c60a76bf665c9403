package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultDuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint. No API key is required.
type DuckDuckGo struct {
	Endpoint string
	client   *http.Client
}

// NewDuckDuckGo creates a searcher; an empty endpoint uses the public one and a
// nil client gets a 15s timeout.
func NewDuckDuckGo(endpoint string, client *http.Client) *DuckDuckGo {
	if endpoint == "" {
		endpoint = defaultDuckDuckGoEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &DuckDuckGo{Endpoint: endpoint, client: client}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]SearchHit, error) {
	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo page: %w", err)
	}
	var hits []SearchHit
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		href, _ := link.Attr("href")
		hits = append(hits, SearchHit{
			Title:   title,
			URL:     unwrapRedirect(href),
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").First().Text()), " "),
		})
	})
	return hits, nil
}

// unwrapRedirect extracts the target from DuckDuckGo's /l/?uddg= redirect links.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
