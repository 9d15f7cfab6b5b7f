package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/greener/waterdesk/internal/model"
)

// HTTPError is returned for any non-2xx backend response. Callers
// decide the fallback: foreground fetches surface it, silent refreshes
// log it.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string

	// RetryAfter is the server-requested wait from a Retry-After
	// header, zero when absent.
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(
		"backend returned %d on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Body,
	)
}

// RetryPolicy is the bounded-retry policy applied to idempotent reads.
// Mutations never retry: the server is the source of truth for whether
// a plant actually got marked, and a blind replay could double-apply.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the backend client's historical behavior:
// three attempts, 1s base, capped at 5s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
	}
}

// delay returns the backoff before retry number attempt (0-based),
// doubling from BaseDelay and capped at MaxDelay.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	return d
}

// Client is a thin HTTP client for the business backend. Identity is
// injected once as a Session and stamped onto every request; nothing
// is re-read from local storage at call time.
type Client struct {
	baseURL    string
	session    model.Session
	httpClient *http.Client
	retry      RetryPolicy
}

// NewClient creates a backend client. baseURL is the API root (e.g.
// https://usersfunctions.azurewebsites.net/api).
func NewClient(baseURL string, session model.Session, timeout time.Duration, retry RetryPolicy) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: retry,
	}
}

// Session returns the identity this client was built with.
func (c *Client) Session() model.Session {
	return c.session
}

// get performs an HTTP GET with the bounded-retry policy and
// unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.retry.delay(attempt - 1)
			// A rate-limited server names its own wait; respect it.
			var httpErr *HTTPError
			if errors.As(lastErr, &httpErr) && httpErr.RetryAfter > 0 {
				wait = httpErr.RetryAfter
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		err := c.do(ctx, http.MethodGet, path, nil, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

// post performs a single-attempt HTTP POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// retryable reports whether an error is worth another attempt:
// transport failures, rate limiting, and server-side 5xx. Client
// errors (4xx) will not get better by asking again.
func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode >= 500
	}
	return true
}

// do builds the request, stamps identity headers, and handles JSON
// (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Email", c.session.UserEmail)
	req.Header.Set("X-User-Type", c.session.UserType)
	req.Header.Set("X-Business-ID", c.session.BusinessID)
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       truncate(string(respBody), 200),
			RetryAfter: retryAfter(resp),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w", method, path, err,
		)
	}

	return nil
}

// retryAfter parses a delay-seconds Retry-After header. HTTP-date
// values are ignored; the backend only ever sends seconds.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
