package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultProbeTimeout bounds each individual check.
const DefaultProbeTimeout = 3 * time.Second

// Status is the aggregated verdict.
type Status string

const (
	// Healthy: every probe passed.
	Healthy Status = "ok"
	// Degraded: a provider failed. Searches fail until it recovers.
	Degraded Status = "degraded"
	// Unhealthy: the catalog backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is one probe's outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentEmbedding = "embedding"
	ComponentParser    = "parser"
)

// Report aggregates probe results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service probes the catalog backend and the model providers.
type Service struct {
	probes  []probe
	timeout time.Duration
}

// New creates a Service. embedding and parser may be nil.
func New(db DBPinger, embedding, parser ProviderChecker) *Service {
	s := &Service{timeout: DefaultProbeTimeout}
	s.probes = append(s.probes, probe{name: ComponentDatabase, critical: true, run: db.Ping})
	if embedding != nil {
		s.probes = append(s.probes, probe{name: ComponentEmbedding, run: embedding.HealthCheck})
	}
	if parser != nil {
		s.probes = append(s.probes, probe{name: ComponentParser, run: parser.HealthCheck})
	}
	return s
}

// WithProbeTimeout overrides DefaultProbeTimeout. Non-positive values are ignored.
func (s *Service) WithProbeTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs all probes concurrently. A slow provider cannot hold the
// response longer than the probe timeout.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(s.probes))
		status = Healthy
	)

	var g errgroup.Group
	for _, p := range s.probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			res := CheckOK
			if err := p.run(pctx); err != nil {
				res = CheckError
			}

			mu.Lock()
			defer mu.Unlock()
			checks[p.name] = res
			if res == CheckError {
				switch {
				case p.critical:
					status = Unhealthy
				case status == Healthy:
					status = Degraded
				}
			}
			return nil
		})
	}
	_ = g.Wait() // probes never return errors

	return Report{Status: status, Checks: checks}
}
