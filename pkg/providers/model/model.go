package model

// Model holds per-call generation options.
// The zero value is valid; zero fields mean "use provider default".
// Temperature is a pointer so that an explicit 0 is kept.
type Model struct {
	Name        string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// WithTemperature returns a copy of m with Temperature set to t.
func (m Model) WithTemperature(t float64) Model {
	m.Temperature = &t

	return m
}

// WithDefaultName returns a copy of m whose Name falls back to def when
// unset.
func (m Model) WithDefaultName(def string) Model {
	if m.Name == "" {
		m.Name = def
	}

	return m
}

// IsZero reports whether no option is set.
func (m Model) IsZero() bool {
	return m == Model{}
}
