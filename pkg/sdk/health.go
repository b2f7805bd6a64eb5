package searchr

import (
	"context"

	healthuc "github.com/kailas-cloud/searchr/internal/usecase/health"
)

// HealthStatus is the aggregated state of the primary store, the broker
// and the index.
type HealthStatus struct {
	Status  string            // "ok", "degraded" or "error"
	Checks  map[string]string // component name to "ok" or "error"
	Failing []string          // sorted names of failing components
}

// OK reports whether every component answered.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Health pings every component the client depends on.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks, Failing: report.Failing}
}
