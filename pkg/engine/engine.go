package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/germanamz/ultima/pkg/cmdrunner"
	"github.com/germanamz/ultima/pkg/credentials"
	"github.com/germanamz/ultima/pkg/providers/claude"
	"github.com/germanamz/ultima/pkg/providers/dolphin"
	"github.com/germanamz/ultima/pkg/providers/gemini"
	"github.com/germanamz/ultima/pkg/providers/model"
	"github.com/germanamz/ultima/pkg/providers/ollama"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	// SystemName and Version identify the status report.
	SystemName = "ULTIMA_SYSTEM"
	Version    = "1.0.0"

	// ProviderAuto selects the first provider in AutoOrder that answers.
	ProviderAuto = "auto"
)

var (
	// AutoOrder is the fixed priority of auto generation.
	AutoOrder = []string{provider.Gemini, provider.Ollama, provider.Claude}
	// Names lists every provider in report order.
	Names = []string{provider.Ollama, provider.Dolphin, provider.Gemini, provider.Claude}
)

var (
	// ErrNoProvider is returned when no provider produced text.
	ErrNoProvider = errors.New("no available provider")
	// ErrUnknownProvider is returned for names the engine does not know.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrDisabled is returned when a named provider is disabled in config.
	ErrDisabled = errors.New("provider disabled in config")
)

// Engine is the composition root. It owns one wrapper per enabled provider.
type Engine struct {
	cfg        Config
	log        *zap.Logger
	events     *EventBus
	runner     cmdrunner.Runner
	httpClient *http.Client
	providers  map[string]provider.Prober
	status     *cache.Cache
	cacheTTL   time.Duration
	now        func() time.Time
}

// Option customizes New.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRunner sets the command runner used by the CLI-backed providers.
func WithRunner(r cmdrunner.Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithHTTPClient sets the HTTP client used by the HTTP-backed providers.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.httpClient = c }
}

// WithProvider installs p under p.Name(), bypassing the factory. The
// matching config section still controls whether it is enabled.
func WithProvider(p provider.Prober) Option {
	return func(e *Engine) { e.providers[p.Name()] = p }
}

// New validates cfg and builds every enabled provider.
func New(ctx context.Context, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ttl, _ := cfg.CacheTTL()

	e := &Engine{
		cfg:       cfg,
		log:       zap.NewNop(),
		events:    NewEventBus(),
		runner:    cmdrunner.ExecRunner{},
		providers: make(map[string]provider.Prober, len(Names)),
		status:    cache.New(ttl, 0),
		cacheTTL:  ttl,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if r, ok := e.runner.(cmdrunner.ExecRunner); ok && r.Logger == nil {
		r.Logger = e.log.Named("exec")
		e.runner = r
	}

	deps := Deps{Runner: e.runner, HTTPClient: e.httpClient, Logger: e.log}

	for _, name := range Names {
		pc, _ := cfg.Provider(name)
		if !pc.Enabled {
			delete(e.providers, name)
			e.log.Debug("provider disabled", zap.String("provider", name))

			continue
		}

		if _, injected := e.providers[name]; injected {
			continue
		}

		p, err := buildProvider(ctx, name, pc, deps)
		if err != nil {
			return nil, err
		}
		e.providers[name] = p
	}

	return e, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config { return e.cfg }

// Events returns the engine's event bus.
func (e *Engine) Events() *EventBus { return e.events }

// Provider returns the enabled provider registered under name.
func (e *Engine) Provider(name string) (provider.Prober, bool) {
	p, ok := e.providers[name]
	return p, ok
}

// Ollama returns the ollama client, or nil when disabled or replaced.
func (e *Engine) Ollama() *ollama.Client {
	c, _ := e.providers[provider.Ollama].(*ollama.Client)
	return c
}

// Dolphin returns the dolphin project, or nil when disabled or replaced.
func (e *Engine) Dolphin() *dolphin.Project {
	p, _ := e.providers[provider.Dolphin].(*dolphin.Project)
	return p
}

// Gemini returns the gemini CLI wrapper, or nil when disabled or replaced.
func (e *Engine) Gemini() *gemini.CLI {
	c, _ := e.providers[provider.Gemini].(*gemini.CLI)
	return c
}

// Claude returns the claude client, or nil when disabled or replaced.
func (e *Engine) Claude() *claude.Client {
	c, _ := e.providers[provider.Claude].(*claude.Client)
	return c
}

// Attempt records one provider tried during a generation.
type Attempt struct {
	Provider string `json:"provider"`
	Error    string `json:"error,omitempty"`
}

// Result is a successful generation.
type Result struct {
	ID       string    `json:"id"`
	Provider string    `json:"provider"`
	Text     string    `json:"text"`
	Attempts []Attempt `json:"attempts"`
}

// Generate produces text for prompt. providerName "auto" (or empty) tries
// AutoOrder and returns the first non-empty answer; any other name dispatches
// to that provider only.
func (e *Engine) Generate(ctx context.Context, prompt, providerName string, opts model.Model) (Result, error) {
	req := provider.Request{Prompt: prompt, Model: opts}
	res := Result{ID: uuid.NewString()}

	if providerName == "" || providerName == ProviderAuto {
		return e.generateAuto(ctx, req, res)
	}

	g, err := e.generator(providerName)
	if err != nil {
		return res, err
	}

	text, err := e.attempt(ctx, res.ID, providerName, g, req)
	res.Attempts = append(res.Attempts, attemptOf(providerName, err))
	if err != nil {
		return res, err
	}

	res.Provider, res.Text = providerName, text

	return res, nil
}

func (e *Engine) generateAuto(ctx context.Context, req provider.Request, res Result) (Result, error) {
	var errs []error

	for _, name := range AutoOrder {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		p, ok := e.providers[name]
		if !ok {
			continue
		}

		g, ok := p.(provider.Generator)
		if !ok {
			continue
		}

		text, err := e.attempt(ctx, res.ID, name, g, req)
		res.Attempts = append(res.Attempts, attemptOf(name, err))

		if err == nil {
			res.Provider, res.Text = name, text
			return res, nil
		}

		errs = append(errs, err)

		e.log.Info("provider failed, falling back",
			zap.String("request_id", res.ID),
			zap.String("provider", name),
			zap.Error(err),
		)
		e.publish(EventGenerateFallback, res.ID, name, err)
	}

	e.publish(EventGenerateExhausted, res.ID, "", nil)
	e.log.Warn("no provider produced a result", zap.String("request_id", res.ID))

	return res, errors.Join(append([]error{ErrNoProvider}, errs...)...)
}

// attempt runs one provider and treats a blank answer as a failure.
func (e *Engine) attempt(ctx context.Context, id, name string, g provider.Generator, req provider.Request) (string, error) {
	e.publish(EventGenerateAttempt, id, name, nil)

	start := e.now()
	text, err := g.Generate(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%s: %w", name, provider.ErrEmptyResponse)
	}

	if err != nil {
		return "", err
	}

	e.log.Debug("generation succeeded",
		zap.String("request_id", id),
		zap.String("provider", name),
		zap.Duration("elapsed", e.now().Sub(start)),
	)
	e.publish(EventGenerateSuccess, id, name, nil)

	return text, nil
}

func (e *Engine) generator(name string) (provider.Generator, error) {
	p, ok := e.providers[name]
	if !ok {
		if _, known := e.cfg.Provider(name); known {
			return nil, fmt.Errorf("engine: %s: %w", name, ErrDisabled)
		}

		return nil, fmt.Errorf("engine: %w: %q", ErrUnknownProvider, name)
	}

	g, ok := p.(provider.Generator)
	if !ok {
		return nil, fmt.Errorf("engine: %s: %w", name, provider.ErrNotGenerator)
	}

	return g, nil
}

func attemptOf(name string, err error) Attempt {
	a := Attempt{Provider: name}
	if err != nil {
		a.Error = err.Error()
	}

	return a
}

// AsyncResult is delivered by GenerateAsync.
type AsyncResult struct {
	Result Result
	Err    error
}

// GenerateAsync runs Generate in its own goroutine. The channel receives
// exactly one AsyncResult and is then closed.
func (e *Engine) GenerateAsync(ctx context.Context, prompt, providerName string, opts model.Model) <-chan AsyncResult {
	ch := make(chan AsyncResult, 1)

	go func() {
		defer close(ch)

		res, err := e.Generate(ctx, prompt, providerName, opts)
		ch <- AsyncResult{Result: res, Err: err}
	}()

	return ch
}

// Chat forwards a conversation to ollama.
func (e *Engine) Chat(ctx context.Context, messages []provider.Message, opts model.Model) (string, error) {
	c := e.Ollama()
	if c == nil {
		return "", fmt.Errorf("engine: chat: %w", provider.ErrUnavailable)
	}

	return c.Chat(ctx, messages, opts)
}

// ListModels returns the models installed in ollama.
func (e *Engine) ListModels(ctx context.Context) ([]string, error) {
	c := e.Ollama()
	if c == nil {
		return nil, fmt.Errorf("engine: list models: %w", provider.ErrUnavailable)
	}

	return c.ListModels(ctx)
}

// WatchCredentials reloads claude credentials whenever the file changes and
// invalidates the status cache. It blocks until ctx is done.
func (e *Engine) WatchCredentials(ctx context.Context) error {
	c := e.Claude()
	if c == nil {
		return fmt.Errorf("engine: watch credentials: %w", provider.ErrUnavailable)
	}

	return credentials.Watch(ctx, c.CredentialsPath, e.log.Named("credentials"), func(creds credentials.Credentials, err error) {
		c.Update(creds, err)
		e.Refresh()
		e.publish(EventCredentialsReload, "", provider.Claude, err)
	})
}

// Close releases idle HTTP connections and drops cached status.
func (e *Engine) Close() error {
	e.status.Flush()

	if e.httpClient != nil {
		e.httpClient.CloseIdleConnections()
	}

	return nil
}

func (e *Engine) publish(kind EventKind, id, name string, data any) {
	e.events.Publish(Event{
		Kind:      kind,
		RequestID: id,
		Provider:  name,
		Timestamp: e.now(),
		Data:      data,
	})
}
