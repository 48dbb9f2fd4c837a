package provider

import (
	"context"
	"errors"
	"time"

	"github.com/germanamz/ultima/pkg/modeladapter"
	"github.com/germanamz/ultima/pkg/providers/model"
)

// Provider names known to the engine.
const (
	Ollama  = "ollama"
	Dolphin = "dolphin"
	Gemini  = "gemini"
	Claude  = "claude"
)

var (
	// ErrUnavailable is returned when the wrapped tool is not installed,
	// not configured, or not reachable.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrEmptyResponse is returned when a tool answered with no text.
	ErrEmptyResponse = errors.New("empty response")
	// ErrNotGenerator is returned when generation is requested from a
	// provider that cannot generate text.
	ErrNotGenerator = errors.New("provider does not support generation")
)

// Request is a single generation request.
type Request struct {
	Prompt string
	System string // Optional system instruction; ignored by CLI backends.
	model.Model
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prober reports whether a wrapped tool is reachable right now.
type Prober interface {
	Name() string
	Status(ctx context.Context) Status
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Health is the three-valued readiness tag of a provider.
type Health string

const (
	HealthOperational Health = "operational"
	HealthDegraded    Health = "degraded"
	HealthFailed      Health = "failed"
)

// Status is the health record of one provider. Only the fields relevant to
// the provider are populated.
type Status struct {
	Name      string `json:"-"`
	Health    Health `json:"health"`
	Available bool   `json:"available"`
	Enabled   bool   `json:"enabled"`
	Detail    string `json:"detail,omitempty"`

	Models       []string                    `json:"models,omitempty"`
	Path         string                      `json:"path,omitempty"`
	Scripts      []string                    `json:"scripts,omitempty"`
	Version      string                      `json:"version,omitempty"`
	Backend      string                      `json:"backend,omitempty"`
	Subscription string                      `json:"subscription,omitempty"`
	TokenValid   *bool                       `json:"token_valid,omitempty"`
	ExpiresAt    *time.Time                  `json:"expires_at,omitempty"`
	RateLimit    *modeladapter.RateLimitInfo `json:"rate_limit,omitempty"` // Last quota reported by the API, if any.
}

// Operational returns an operational status for name.
func Operational(name string) Status {
	return Status{Name: name, Health: HealthOperational, Available: true, Enabled: true}
}

// Degraded returns a ready-with-caveat status for name.
func Degraded(name, detail string) Status {
	return Status{Name: name, Health: HealthDegraded, Available: true, Enabled: true, Detail: detail}
}

// Failed returns a failed status for name.
func Failed(name, detail string) Status {
	return Status{Name: name, Health: HealthFailed, Enabled: true, Detail: detail}
}

// Ready reports whether the provider can be used, possibly with a caveat.
func (s Status) Ready() bool {
	return s.Health == HealthOperational || s.Health == HealthDegraded
}
