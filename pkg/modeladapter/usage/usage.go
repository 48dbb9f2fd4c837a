// Package usage accumulates token and latency figures reported by
// generation backends.
package usage

import (
	"sync"
	"time"
)

// TokenCount holds input and output token counts for a single generation.
type TokenCount struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the sum of input and output tokens.
func (tc TokenCount) Total() int {
	return tc.InputTokens + tc.OutputTokens
}

// Entry is one recorded generation.
type Entry struct {
	Model    string
	Tokens   TokenCount
	Duration time.Duration
}

// Summary aggregates all recorded entries.
type Summary struct {
	Calls    int            `json:"calls"`
	Tokens   TokenCount     `json:"tokens"`
	Duration time.Duration  `json:"duration"`
	ByModel  map[string]int `json:"by_model,omitempty"`
}

// Tracker accumulates usage across generations. The zero value is ready to
// use and it is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
}

// Add records an entry.
func (t *Tracker) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, e)
}

// Last returns the most recent entry.
// The bool is false when the tracker has no entries.
func (t *Tracker) Last() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) == 0 {
		return Entry{}, false
	}

	return t.entries[len(t.entries)-1], true
}

// Summary returns aggregate figures across all entries.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{Calls: len(t.entries)}
	for _, e := range t.entries {
		s.Tokens.InputTokens += e.Tokens.InputTokens
		s.Tokens.OutputTokens += e.Tokens.OutputTokens
		s.Duration += e.Duration

		if e.Model != "" {
			if s.ByModel == nil {
				s.ByModel = make(map[string]int)
			}
			s.ByModel[e.Model]++
		}
	}

	return s
}

// Count returns the number of recorded entries.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Reset clears all recorded entries.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = nil
}
