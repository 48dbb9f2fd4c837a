package engine

import (
	"github.com/germanamz/ultima/pkg/modeladapter/usage"
)

// usageReporter is implemented by providers that embed a ModelAdapter.
type usageReporter interface {
	UsageTracker() *usage.Tracker
}

// Usage returns the token usage recorded by each HTTP-backed provider since
// the engine was built. Providers without a tracker are omitted.
func (e *Engine) Usage() map[string]usage.Summary {
	out := make(map[string]usage.Summary)

	for name, p := range e.providers {
		if r, ok := p.(usageReporter); ok {
			out[name] = r.UsageTracker().Summary()
		}
	}

	return out
}
