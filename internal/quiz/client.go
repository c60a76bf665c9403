package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/quiz-agent/internal/models"
)

const (
	// maxFileBytes bounds task attachment downloads.
	maxFileBytes = 20 << 20
	// maxSubmitResponseBytes bounds the submit reply.
	maxSubmitResponseBytes = 1 << 20
)

// StatusError is returned for any non-2xx reply from the quiz API.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the quiz API: questions, task files and submission.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Questions fetches the full question list.
func (c *Client) Questions(ctx context.Context) ([]models.Question, error) {
	var out []models.Question
	if err := c.getJSON(ctx, c.BaseURL+"/questions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Question fetches a single question by task id.
func (c *Client) Question(ctx context.Context, taskID string) (models.Question, error) {
	var out models.Question
	err := c.getJSON(ctx, c.BaseURL+"/questions/"+url.PathEscape(taskID), &out)
	return out, err
}

// File downloads the attachment for a task.
func (c *Client) File(ctx context.Context, taskID string) ([]byte, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("missing task id")
	}
	res, err := c.do(ctx, http.MethodGet, c.BaseURL+"/files/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	lr := io.LimitedReader{R: res.Body, N: maxFileBytes + 1}
	b, err := io.ReadAll(&lr)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", taskID, err)
	}
	if len(b) > maxFileBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", taskID, maxFileBytes)
	}
	return b, nil
}

// Submit posts the answers and returns the decoded response body, whatever
// its JSON type. An empty 2xx body yields a nil response and a body that is
// not JSON comes back as its trimmed text.
func (c *Client) Submit(ctx context.Context, payload models.SubmissionPayload) (any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	res, err := c.do(ctx, http.MethodPost, c.BaseURL+"/submit", body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxSubmitResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read submit response: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw), nil
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	res, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// do issues the request and turns any non-2xx status into a *StatusError.
// On success the caller owns the response body.
func (c *Client) do(ctx context.Context, method, u string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer res.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &StatusError{Method: method, URL: u, Code: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return res, nil
}
