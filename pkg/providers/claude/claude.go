// Package claude talks to the Anthropic Messages API using the OAuth access
// token stored in the local Claude credentials file.
package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/germanamz/ultima/pkg/credentials"
	"github.com/germanamz/ultima/pkg/modeladapter"
	"github.com/germanamz/ultima/pkg/modeladapter/usage"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"
	// DefaultModel is used when the request names none.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxTokens is sent when the request sets no limit.
	DefaultMaxTokens = 4096

	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"
	oauthBeta    = "oauth-2025-04-20"
)

var (
	// ErrTokenExpired is returned by Generate when the stored token has expired.
	ErrTokenExpired = errors.New("claude: access token expired")
	// ErrNoToken is returned by Generate when the credentials carry no token.
	ErrNoToken = errors.New("claude: no access token")
)

var (
	_ provider.Prober    = (*Client)(nil)
	_ provider.Generator = (*Client)(nil)
)

// Client reads credentials from disk and calls the Messages API with them.
type Client struct {
	modeladapter.ModelAdapter
	CredentialsPath string
	DefaultModel    string
	Now             func() time.Time
	Log             *zap.Logger

	mu     sync.RWMutex
	creds  credentials.Credentials
	err    error
	loaded bool
}

// New creates a Client. Credentials are loaded lazily on first use.
func New(baseURL, credentialsPath, defaultModel string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	c := &Client{
		CredentialsPath: credentialsPath,
		DefaultModel:    defaultModel,
		Now:             time.Now,
		Log:             zap.NewNop(),
	}
	c.BaseURL = strings.TrimRight(baseURL, "/")
	c.Client = client
	c.Auth = modeladapter.Auth{KeyFunc: c.token}
	c.RateLimitHeaders = modeladapter.ParseAnthropicRateLimitHeaders
	c.Headers = map[string]string{
		"anthropic-version": apiVersion,
		"anthropic-beta":    oauthBeta,
	}

	return c
}

// Name returns the provider name.
func (c *Client) Name() string { return provider.Claude }

// Credentials returns the cached credentials, loading them on first call.
func (c *Client) Credentials() (credentials.Credentials, error) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.creds, c.err
	}
	c.mu.RUnlock()

	return c.Reload()
}

// Reload re-reads the credentials file.
func (c *Client) Reload() (credentials.Credentials, error) {
	creds, err := credentials.Load(c.CredentialsPath)
	c.Update(creds, err)

	return creds, err
}

// Update replaces the cached credentials, e.g. from a credentials.Watcher.
func (c *Client) Update(creds credentials.Credentials, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.creds, c.err, c.loaded = creds, err, true

	if err != nil {
		c.Log.Debug("claude credentials unavailable", zap.Error(err))
	}
}

// AccessToken returns the stored access token, or "" when unavailable.
func (c *Client) AccessToken() string {
	creds, err := c.Credentials()
	if err != nil {
		return ""
	}

	return creds.AccessToken
}

// TokenValid reports whether credentials load and the token is unexpired.
func (c *Client) TokenValid() bool {
	creds, err := c.Credentials()
	return err == nil && creds.Valid(c.Now())
}

// SubscriptionType returns the plan recorded with the credentials.
func (c *Client) SubscriptionType() string {
	creds, err := c.Credentials()
	if err != nil {
		return ""
	}

	return creds.SubscriptionType
}

func (c *Client) token(context.Context) (string, error) {
	creds, err := c.Credentials()
	if err != nil {
		return "", err
	}

	if creds.AccessToken == "" {
		return "", ErrNoToken
	}
	if !creds.Valid(c.Now()) {
		return "", ErrTokenExpired
	}

	return creds.AccessToken, nil
}

// --- wire types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate sends the prompt as a single user turn. An expired or empty token
// fails with ErrTokenExpired or ErrNoToken before any request is made.
func (c *Client) Generate(ctx context.Context, req provider.Request) (string, error) {
	if _, err := c.token(ctx); err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return "", err
		}

		return "", fmt.Errorf("claude: %w: %w", provider.ErrUnavailable, err)
	}

	m := req.WithDefaultName(c.DefaultModel)

	body := apiRequest{
		Model:     m.Name,
		MaxTokens: m.MaxTokens,
		System:    req.System,
		Messages:  []apiMessage{{Role: "user", Content: req.Prompt}},
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = DefaultMaxTokens
	}
	body.Temperature = m.Temperature

	start := time.Now()

	var resp apiResponse
	if err := c.PostJSON(ctx, messagesPath, body, &resp); err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}

	c.Usage.Add(usage.Entry{
		Model: m.Name,
		Tokens: usage.TokenCount{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
		Duration: time.Since(start),
	})

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("claude: %w", provider.ErrEmptyResponse)
	}

	return sb.String(), nil
}

// Status is operational with an unexpired token, degraded when the token
// expired or is empty, and failed when credentials cannot be loaded.
func (c *Client) Status(_ context.Context) provider.Status {
	creds, err := c.Reload()
	if err != nil {
		return provider.Failed(provider.Claude, err.Error())
	}

	valid := creds.Valid(c.Now())
	expires := creds.ExpiresAtTime()

	var st provider.Status
	switch {
	case creds.AccessToken == "":
		st = provider.Degraded(provider.Claude, "no access token")
	case !valid:
		st = provider.Degraded(provider.Claude, "access token expired")
	default:
		st = provider.Operational(provider.Claude)
	}

	st.Subscription = creds.SubscriptionType
	st.TokenValid = &valid
	st.ExpiresAt = &expires
	st.RateLimit = c.LastRateLimitInfo()

	return st
}
