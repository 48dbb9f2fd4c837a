package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/germanamz/ultima/pkg/cmdrunner"
	"github.com/germanamz/ultima/pkg/providers/claude"
	"github.com/germanamz/ultima/pkg/providers/dolphin"
	"github.com/germanamz/ultima/pkg/providers/gemini"
	"github.com/germanamz/ultima/pkg/providers/geminiapi"
	"github.com/germanamz/ultima/pkg/providers/ollama"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"go.uber.org/zap"
)

// Deps are the shared collaborators handed to every ProviderFactory.
type Deps struct {
	Runner     cmdrunner.Runner
	HTTPClient *http.Client // Nil means each provider builds its own.
	Logger     *zap.Logger
}

// ProviderFactory builds a provider from its config section.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig, deps Deps) (provider.Prober, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]ProviderFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories[provider.Ollama] = newOllama
		factories[provider.Dolphin] = newDolphin
		factories[provider.Gemini] = newGemini
		factories[provider.Claude] = newClaude
	})
}

// RegisterProvider replaces the factory used for name. It must be called
// before New.
func RegisterProvider(name string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[name] = factory
}

func getFactory(name string) (ProviderFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[name]

	return f, ok
}

func newOllama(_ context.Context, cfg ProviderConfig, deps Deps) (provider.Prober, error) {
	c := ollama.New(cfg.BaseURL, cfg.DefaultModel, deps.HTTPClient)
	c.Log = deps.Logger.Named(provider.Ollama)

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	c.Timeout = timeout

	return c, nil
}

func newDolphin(_ context.Context, cfg ProviderConfig, deps Deps) (provider.Prober, error) {
	p := dolphin.New(cfg.Path, cfg.Node, withTimeout(deps, cfg))
	p.Log = deps.Logger.Named(provider.Dolphin)

	return p, nil
}

func newGemini(ctx context.Context, cfg ProviderConfig, deps Deps) (provider.Prober, error) {
	c := gemini.New(cfg.Path, cfg.DefaultModel, withTimeout(deps, cfg))
	c.Log = deps.Logger.Named(provider.Gemini)

	if cfg.APIKey != "" {
		api, err := geminiapi.New(ctx, geminiapi.Config{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.DefaultModel,
			HTTPClient:   deps.HTTPClient,
		})
		if err != nil {
			return nil, err
		}
		c.API = api
	}

	return c, nil
}

func newClaude(_ context.Context, cfg ProviderConfig, deps Deps) (provider.Prober, error) {
	c := claude.New(cfg.BaseURL, cfg.CredentialsPath, cfg.DefaultModel, deps.HTTPClient)
	c.Log = deps.Logger.Named(provider.Claude)

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	c.Timeout = timeout

	return c, nil
}

// withTimeout returns deps.Runner bounded by the section's timeout when the
// runner is the real one.
func withTimeout(deps Deps, cfg ProviderConfig) cmdrunner.Runner {
	r, ok := deps.Runner.(cmdrunner.ExecRunner)
	if !ok {
		return deps.Runner
	}

	if d, err := cfg.TimeoutDuration(); err == nil && d > 0 {
		r.Timeout = d
	}

	return r
}

func buildProvider(ctx context.Context, name string, cfg ProviderConfig, deps Deps) (provider.Prober, error) {
	factory, ok := getFactory(name)
	if !ok {
		return nil, fmt.Errorf("engine: %w: %q", ErrUnknownProvider, name)
	}

	p, err := factory(ctx, cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("engine: provider %q: %w", name, err)
	}

	return p, nil
}
