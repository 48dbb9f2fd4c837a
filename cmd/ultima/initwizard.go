package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/ultima/pkg/engine"
	"github.com/germanamz/ultima/pkg/providers/provider"
)

// wizardAnswers holds everything the init wizard asks for.
type wizardAnswers struct {
	Enabled           []string
	OllamaURL         string
	OllamaModel       string
	DolphinPath       string
	GeminiPath        string
	GeminiModel       string
	GeminiAPIKey      string //nolint:gosec // env var reference, not a secret
	ClaudeCredentials string
	CacheTTL          string
}

// defaultAnswers seeds the wizard from DefaultConfig.
func defaultAnswers() wizardAnswers {
	def := engine.DefaultConfig()

	return wizardAnswers{
		Enabled:           slices.Clone(engine.Names),
		OllamaURL:         def.Ollama.BaseURL,
		OllamaModel:       def.Ollama.DefaultModel,
		DolphinPath:       "~/dolphin",
		GeminiPath:        def.Gemini.Path,
		GeminiModel:       def.Gemini.DefaultModel,
		GeminiAPIKey:      "${GEMINI_API_KEY}",
		ClaudeCredentials: def.Claude.CredentialsPath,
		CacheTTL:          def.StatusCacheTTL,
	}
}

func runWizard() ([]byte, error) {
	ans := defaultAnswers()

	opts := make([]huh.Option[string], len(engine.Names))
	for i, n := range engine.Names {
		opts[i] = huh.NewOption(n, n).Selected(true)
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Enabled integrations").
			Options(opts...).
			Value(&ans.Enabled),
	)).Run(); err != nil {
		return nil, err
	}

	var groups []*huh.Group

	if slices.Contains(ans.Enabled, provider.Ollama) {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Ollama base URL").Value(&ans.OllamaURL).Validate(validateHTTPURL),
			huh.NewInput().Title("Ollama default model").Value(&ans.OllamaModel),
		))
	}

	if slices.Contains(ans.Enabled, provider.Dolphin) {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Dolphin project path").Value(&ans.DolphinPath),
		))
	}

	if slices.Contains(ans.Enabled, provider.Gemini) {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("gemini CLI binary").Value(&ans.GeminiPath),
			huh.NewInput().Title("Gemini default model").Value(&ans.GeminiModel),
			huh.NewInput().Title("Gemini API key env var (empty = CLI only)").Value(&ans.GeminiAPIKey),
		))
	}

	if slices.Contains(ans.Enabled, provider.Claude) {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Claude credentials file").Value(&ans.ClaudeCredentials),
		))
	}

	groups = append(groups, huh.NewGroup(
		huh.NewInput().Title("Status cache TTL (0 = no caching)").Value(&ans.CacheTTL).Validate(validateDuration),
	))

	if err := huh.NewForm(groups...).Run(); err != nil {
		return nil, err
	}

	return marshalWizardConfig(ans)
}

// buildConfig turns wizard answers into a configuration.
func buildConfig(ans wizardAnswers) engine.Config {
	cfg := engine.DefaultConfig()

	cfg.Ollama.Enabled = slices.Contains(ans.Enabled, provider.Ollama)
	cfg.Ollama.BaseURL = ans.OllamaURL
	cfg.Ollama.DefaultModel = ans.OllamaModel

	cfg.Dolphin.Enabled = slices.Contains(ans.Enabled, provider.Dolphin)
	cfg.Dolphin.Path = ans.DolphinPath

	cfg.Gemini.Enabled = slices.Contains(ans.Enabled, provider.Gemini)
	cfg.Gemini.Path = ans.GeminiPath
	cfg.Gemini.DefaultModel = ans.GeminiModel
	cfg.Gemini.APIKey = ans.GeminiAPIKey

	cfg.Claude.Enabled = slices.Contains(ans.Enabled, provider.Claude)
	cfg.Claude.CredentialsPath = ans.ClaudeCredentials

	cfg.StatusCacheTTL = ans.CacheTTL

	return cfg
}

func marshalWizardConfig(ans wizardAnswers) ([]byte, error) {
	cfg := buildConfig(ans)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return append(data, '\n'), nil
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http(s) URL")
	}

	return nil
}

func validateDuration(s string) error {
	if s == "" || s == "0" {
		return nil
	}

	if d, err := time.ParseDuration(s); err != nil || d < 0 {
		return fmt.Errorf("must be a valid duration (e.g. 30s, 1m)")
	}

	return nil
}
