// Package geminiapi generates text through the Gemini API with the Google
// GenAI SDK. It backs the gemini provider when the CLI is not installed.
package geminiapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/germanamz/ultima/pkg/providers/provider"
	"google.golang.org/genai"
)

// DefaultModel is used when the request names none.
const DefaultModel = "gemini-2.0-flash-exp"

var _ provider.Generator = (*Client)(nil)

// Config holds the settings for New.
type Config struct {
	APIKey       string
	BaseURL      string // Overrides the API endpoint; empty for the default.
	DefaultModel string
	HTTPClient   *http.Client
}

// Client is a provider.Generator backed by the Gemini API.
type Client struct {
	genai        *genai.Client
	defaultModel string
}

// New creates a Client. An API key is required.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("geminiapi: api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("geminiapi: create client: %w", err)
	}

	def := cfg.DefaultModel
	if def == "" {
		def = DefaultModel
	}

	return &Client{genai: gc, defaultModel: def}, nil
}

// Generate sends a single-turn prompt to generateContent.
func (c *Client) Generate(ctx context.Context, req provider.Request) (string, error) {
	m := req.WithDefaultName(c.defaultModel)

	gcc := &genai.GenerateContentConfig{}
	if m.Temperature != nil {
		gcc.Temperature = genai.Ptr(float32(*m.Temperature))
	}
	if m.MaxTokens > 0 {
		gcc.MaxOutputTokens = int32(m.MaxTokens) //nolint:gosec // bounded by config
	}
	if req.System != "" {
		gcc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, m.Name, genai.Text(req.Prompt), gcc)
	if err != nil {
		return "", fmt.Errorf("geminiapi: generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("geminiapi: %w", provider.ErrEmptyResponse)
	}

	return text, nil
}
