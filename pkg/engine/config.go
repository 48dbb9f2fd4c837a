package engine

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/germanamz/ultima/pkg/providers/provider"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration. The file is JSON; any YAML is
// accepted too.
type Config struct {
	Ollama         ProviderConfig `yaml:"ollama" json:"ollama"`
	Dolphin        ProviderConfig `yaml:"dolphin" json:"dolphin"`
	Gemini         ProviderConfig `yaml:"gemini" json:"gemini"`
	Claude         ProviderConfig `yaml:"claude" json:"claude"`
	StatusCacheTTL string         `yaml:"status_cache_ttl" json:"status_cache_ttl,omitempty"` // Duration string; "0" disables caching.
}

// ProviderConfig configures one provider. Only the fields relevant to the
// provider are read.
type ProviderConfig struct {
	Enabled         bool   `yaml:"enabled" json:"enabled"`
	BaseURL         string `yaml:"base_url" json:"base_url,omitempty"`
	Path            string `yaml:"path" json:"path,omitempty"` // Dolphin project root or gemini binary.
	DefaultModel    string `yaml:"default_model" json:"default_model,omitempty"`
	CredentialsPath string `yaml:"credentials_path" json:"credentials_path,omitempty"`
	APIKey          string `yaml:"api_key" json:"api_key,omitempty"` //nolint:gosec // configuration field, not a hardcoded secret
	Node            string `yaml:"node" json:"node,omitempty"`
	Timeout         string `yaml:"timeout" json:"timeout,omitempty"` // Duration string, e.g. "2m".
}

// TimeoutDuration parses Timeout; an empty value yields zero.
func (p ProviderConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration(p.Timeout)
}

// DefaultConfig returns the configuration used for sections missing from the
// file.
func DefaultConfig() Config {
	return Config{
		Ollama: ProviderConfig{
			Enabled:      true,
			BaseURL:      "http://localhost:11434",
			DefaultModel: "llama2",
			Timeout:      "2m",
		},
		Dolphin: ProviderConfig{
			Enabled: true,
			Node:    "node",
			Timeout: "5m",
		},
		Gemini: ProviderConfig{
			Enabled:      true,
			Path:         "gemini",
			DefaultModel: "gemini-2.0-flash-exp",
			Timeout:      "2m",
		},
		Claude: ProviderConfig{
			Enabled:         true,
			BaseURL:         "https://api.anthropic.com",
			CredentialsPath: "~/.claude/.credentials.json",
			DefaultModel:    "claude-sonnet-4-20250514",
			Timeout:         "2m",
		},
		StatusCacheTTL: "30s",
	}
}

// Provider returns the section for the named provider.
func (c Config) Provider(name string) (ProviderConfig, bool) {
	switch name {
	case provider.Ollama:
		return c.Ollama, true
	case provider.Dolphin:
		return c.Dolphin, true
	case provider.Gemini:
		return c.Gemini, true
	case provider.Claude:
		return c.Claude, true
	default:
		return ProviderConfig{}, false
	}
}

// CacheTTL parses StatusCacheTTL.
func (c Config) CacheTTL() (time.Duration, error) {
	return parseDuration(c.StatusCacheTTL)
}

// LoadConfig reads the file at path on top of DefaultConfig. Environment
// variables referenced as ${VAR} or $VAR are expanded before parsing so API
// keys can live in the environment (e.g. loaded from a .env file). A leading
// "~" in path-like fields is expanded to the home directory.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses config data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	cfg.expandHome()

	return cfg, nil
}

func (c *Config) expandHome() {
	for _, p := range []*string{&c.Dolphin.Path, &c.Gemini.Path, &c.Claude.CredentialsPath} {
		*p = ExpandHome(*p)
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}

	return filepath.Join(home, p[1:])
}

// Validate checks durations and URLs.
func (c Config) Validate() error {
	if _, err := c.CacheTTL(); err != nil {
		return fmt.Errorf("engine: config: status_cache_ttl: %w", err)
	}

	for _, name := range Names {
		p, _ := c.Provider(name)

		if _, err := p.TimeoutDuration(); err != nil {
			return fmt.Errorf("engine: config: %s: timeout: %w", name, err)
		}

		if p.BaseURL != "" {
			if err := validateURL(p.BaseURL); err != nil {
				return fmt.Errorf("engine: config: %s: base_url: %w", name, err)
			}
		}
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}

	if d < 0 {
		return 0, errors.New("must not be negative")
	}

	return d, nil
}
