package engine

import (
	"context"
	"sync"
	"time"

	"github.com/germanamz/ultima/pkg/providers/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const reportKey = "report"

// Report is the system status report.
type Report struct {
	System       string                     `json:"system"`
	Version      string                     `json:"version"`
	Timestamp    time.Time                  `json:"timestamp"`
	Integrations map[string]provider.Status `json:"integrations"`
}

// Healthy reports whether at least one provider is ready.
func (r Report) Healthy() bool {
	for _, st := range r.Integrations {
		if st.Ready() {
			return true
		}
	}

	return false
}

// StatusReport probes every provider concurrently. Results are cached for
// the configured status_cache_ttl. Probes never fail; problems surface as
// failed health with a detail.
func (e *Engine) StatusReport(ctx context.Context) Report {
	if e.cacheTTL > 0 {
		if r, ok := e.status.Get(reportKey); ok {
			return r.(Report) //nolint:forcetypeassert // only Report values are stored
		}
	}

	report := Report{
		System:       SystemName,
		Version:      Version,
		Timestamp:    e.now(),
		Integrations: make(map[string]provider.Status, len(Names)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range Names {
		g.Go(func() error {
			st := e.probe(gctx, name)

			mu.Lock()
			report.Integrations[name] = st
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	if e.cacheTTL > 0 {
		e.status.SetDefault(reportKey, report)
	}

	return report
}

func (e *Engine) probe(ctx context.Context, name string) provider.Status {
	p, ok := e.providers[name]
	if !ok {
		st := provider.Failed(name, "disabled in config")
		st.Enabled = false

		return st
	}

	start := e.now()
	st := p.Status(ctx)
	st.Name = name
	st.Enabled = true

	e.log.Debug("status probe",
		zap.String("provider", name),
		zap.String("health", string(st.Health)),
		zap.Duration("elapsed", e.now().Sub(start)),
	)
	e.publish(EventStatusProbe, "", name, st)

	return st
}

// Refresh drops the cached status report.
func (e *Engine) Refresh() {
	e.status.Delete(reportKey)
}
