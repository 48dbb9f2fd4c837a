package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/germanamz/ultima/pkg/modeladapter/usage"
)

// DefaultTimeout bounds requests sent through the default HTTP client.
const DefaultTimeout = 2 * time.Minute

// RateLimitError is returned when the API responds with HTTP 429 (Too Many Requests).
// It carries an optional RetryAfter duration parsed from the Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		d := time.Until(t)
		if d > 0 {
			return d
		}
		return 0
	}
	return 0
}

// KeyFunc resolves an auth key at request time.
type KeyFunc func(ctx context.Context) (string, error)

// Auth holds authentication settings for an API.
type Auth struct {
	Key     string  // Static key value.
	KeyFunc KeyFunc // Resolves the key per request; takes precedence over Key.
	Header  string  // Header name (default: "Authorization").
	Scheme  string  // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// ModelAdapter holds shared state for HTTP-backed providers. Embed it in
// concrete provider structs to get auth, custom headers, JSON helpers, and
// usage tracking.
type ModelAdapter struct {
	Auth    Auth              // Authentication settings.
	BaseURL string            // API base URL (no trailing slash).
	Client  *http.Client      // HTTP client; falls back to a client with Timeout.
	Timeout time.Duration     // Timeout of the fallback client (default DefaultTimeout).
	Headers map[string]string // Extra headers applied to every request.
	Usage   usage.Tracker     // Token usage tracker.

	// RateLimitHeaders, when set, is applied to every response and the
	// result is kept for LastRateLimitInfo.
	RateLimitHeaders RateLimitHeaderParser

	clientOnce    sync.Once
	defaultClient *http.Client
	rateLimit     rateLimitState
}

// New creates a ModelAdapter with the given settings.
// A nil client falls back to a default client at call time.
func New(baseURL string, auth Auth, client *http.Client) ModelAdapter {
	return ModelAdapter{
		Auth:    auth,
		BaseURL: baseURL,
		Client:  client,
	}
}

// UsageTracker returns the adapter's token usage tracker.
func (a *ModelAdapter) UsageTracker() *usage.Tracker { return &a.Usage }

// LastRateLimitInfo returns a copy of the quota reported by the most recent
// response, or nil when none was seen.
func (a *ModelAdapter) LastRateLimitInfo() *RateLimitInfo { return a.rateLimit.get() }

// httpClient returns the configured client or a cached default client.
func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	a.clientOnce.Do(func() {
		timeout := a.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		a.defaultClient = &http.Client{Timeout: timeout}
	})

	return a.defaultClient
}

// authValue resolves the header name and value to send, or an empty header
// when no key is configured.
func (a *ModelAdapter) authValue(ctx context.Context) (string, string, error) {
	key := a.Auth.Key
	if a.Auth.KeyFunc != nil {
		k, err := a.Auth.KeyFunc(ctx)
		if err != nil {
			return "", "", err
		}
		key = k
	}

	if key == "" {
		return "", "", nil
	}

	header := a.Auth.Header
	if header == "" {
		header = "Authorization"
	}

	value := key
	if header == "Authorization" {
		scheme := a.Auth.Scheme
		if scheme == "" {
			scheme = "Bearer"
		}

		value = scheme + " " + value
	} else if a.Auth.Scheme != "" {
		value = a.Auth.Scheme + " " + value
	}

	return header, value, nil
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := a.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	header, value, err := a.authValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve auth: %w", err)
	}
	if header != "" {
		req.Header.Set(header, value)
	}

	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a *ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostJSON marshals payload as JSON, sends a POST to the given path,
// checks for a 2xx status, and unmarshals the response body into dest.
// If dest is nil the response body is discarded after the status check.
func (a *ModelAdapter) PostJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := a.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return a.doJSON(req, dest)
}

// GetJSON sends a GET to the given path, checks for a 2xx status, and
// unmarshals the response body into dest.
func (a *ModelAdapter) GetJSON(ctx context.Context, path string, dest any) error {
	req, err := a.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	return a.doJSON(req, dest)
}

func (a *ModelAdapter) doJSON(req *http.Request, dest any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := a.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if a.RateLimitHeaders != nil {
		a.rateLimit.record(a.RateLimitHeaders(resp.Header, time.Now()))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		respBody, _ := io.ReadAll(resp.Body)
		return &RateLimitError{
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(respBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
