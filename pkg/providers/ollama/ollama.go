// Package ollama wraps the HTTP API of a local Ollama daemon.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/germanamz/ultima/pkg/modeladapter"
	"github.com/germanamz/ultima/pkg/modeladapter/usage"
	"github.com/germanamz/ultima/pkg/providers/model"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is where the daemon listens unless configured otherwise.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is used when neither the request nor the config names one.
	DefaultModel = "llama2"

	tagsPath     = "/api/tags"
	generatePath = "/api/generate"
	chatPath     = "/api/chat"
	versionPath  = "/api/version"
)

var (
	_ provider.Prober    = (*Client)(nil)
	_ provider.Generator = (*Client)(nil)
)

// Client talks to an Ollama daemon.
type Client struct {
	modeladapter.ModelAdapter
	DefaultModel string
	Log          *zap.Logger
}

// New creates a Client for the daemon at baseURL. An empty baseURL means
// DefaultBaseURL and an empty defaultModel means DefaultModel.
func New(baseURL, defaultModel string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	c := &Client{DefaultModel: defaultModel, Log: zap.NewNop()}
	c.BaseURL = baseURL
	c.Client = client

	return c
}

// Name returns the provider name.
func (c *Client) Name() string { return provider.Ollama }

// --- wire types ---

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	TotalDuration   int64  `json:"total_duration"`
}

type chatRequest struct {
	Model    string             `json:"model"`
	Messages []provider.Message `json:"messages"`
	Stream   bool               `json:"stream"`
	Options  *options           `json:"options,omitempty"`
}

type chatResponse struct {
	Message         provider.Message `json:"message"`
	PromptEvalCount int              `json:"prompt_eval_count"`
	EvalCount       int              `json:"eval_count"`
	TotalDuration   int64            `json:"total_duration"`
}

func optionsFor(m model.Model) *options {
	if m.Temperature == nil && m.MaxTokens == 0 {
		return nil
	}

	return &options{Temperature: m.Temperature, NumPredict: m.MaxTokens}
}

// ListModels returns the names of the locally installed models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var resp tagsResponse
	if err := c.GetJSON(ctx, tagsPath, &resp); err != nil {
		return nil, fmt.Errorf("ollama: list models: %w", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}

	return names, nil
}

// Generate runs a single non-streaming completion.
func (c *Client) Generate(ctx context.Context, req provider.Request) (string, error) {
	m := req.WithDefaultName(c.DefaultModel)

	body := generateRequest{
		Model:   m.Name,
		Prompt:  req.Prompt,
		System:  req.System,
		Options: optionsFor(m),
	}

	var resp generateResponse
	if err := c.PostJSON(ctx, generatePath, body, &resp); err != nil {
		return "", fmt.Errorf("ollama: generate: %w", err)
	}

	c.track(m.Name, resp.PromptEvalCount, resp.EvalCount, resp.TotalDuration)

	if resp.Response == "" {
		return "", fmt.Errorf("ollama: %w", provider.ErrEmptyResponse)
	}

	return resp.Response, nil
}

// Result is the outcome delivered by GenerateAsync.
type Result struct {
	Text string
	Err  error
}

// GenerateAsync runs Generate in its own goroutine. The returned channel
// receives exactly one Result and is then closed.
func (c *Client) GenerateAsync(ctx context.Context, req provider.Request) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		defer close(ch)

		text, err := c.Generate(ctx, req)
		ch <- Result{Text: text, Err: err}
	}()

	return ch
}

// Chat sends a conversation and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, messages []provider.Message, opts model.Model) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("ollama: chat: no messages")
	}

	m := opts.WithDefaultName(c.DefaultModel)

	body := chatRequest{
		Model:    m.Name,
		Messages: messages,
		Options:  optionsFor(m),
	}

	var resp chatResponse
	if err := c.PostJSON(ctx, chatPath, body, &resp); err != nil {
		return "", fmt.Errorf("ollama: chat: %w", err)
	}

	c.track(m.Name, resp.PromptEvalCount, resp.EvalCount, resp.TotalDuration)

	if resp.Message.Content == "" {
		return "", fmt.Errorf("ollama: %w", provider.ErrEmptyResponse)
	}

	return resp.Message.Content, nil
}

// Version returns the daemon version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp struct {
		Version string `json:"version"`
	}
	if err := c.GetJSON(ctx, versionPath, &resp); err != nil {
		return "", fmt.Errorf("ollama: version: %w", err)
	}

	return resp.Version, nil
}

// Status probes the daemon. It is operational with at least one model,
// degraded with none, and failed when unreachable.
func (c *Client) Status(ctx context.Context) provider.Status {
	models, err := c.ListModels(ctx)
	if err != nil {
		c.Log.Debug("ollama probe failed", zap.Error(err))
		return provider.Failed(provider.Ollama, err.Error())
	}

	var st provider.Status
	if len(models) == 0 {
		st = provider.Degraded(provider.Ollama, "no models installed")
	} else {
		st = provider.Operational(provider.Ollama)
	}

	st.Models = models

	if v, err := c.Version(ctx); err == nil {
		st.Version = v
	}

	return st
}

func (c *Client) track(name string, in, out int, totalNanos int64) {
	c.Usage.Add(usage.Entry{
		Model:    name,
		Tokens:   usage.TokenCount{InputTokens: in, OutputTokens: out},
		Duration: time.Duration(totalNanos),
	})
}
