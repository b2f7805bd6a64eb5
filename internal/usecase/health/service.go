package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentQueue    = "queue"
	ComponentIndex    = "index"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Failing []string // sorted names of failing components
}

const defaultCheckTimeout = 2 * time.Second

// Service coordinates health checks.
type Service struct {
	components map[string]Pinger
	timeout    time.Duration
}

// New creates a Service over the primary store. Other components are added
// with WithComponent.
func New(db Pinger) *Service {
	return &Service{
		components: map[string]Pinger{ComponentDatabase: db},
		timeout:    defaultCheckTimeout,
	}
}

// WithComponent registers a named check. A nil pinger is ignored.
func (s *Service) WithComponent(name string, p Pinger) *Service {
	if p != nil {
		s.components[name] = p
	}
	return s
}

// WithTimeout bounds each component ping.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check pings all components concurrently. A broker that hangs therefore
// costs one timeout, not one per component.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(s.components))
		g      errgroup.Group
	)
	for name, p := range s.components {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			res := CheckOK
			if err := p.Ping(pctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var failing []string
	for name, res := range checks {
		if res == CheckError {
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)

	status := Healthy
	switch {
	case len(failing) == len(checks):
		status = Unhealthy
	case len(failing) > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks, Failing: failing}
}
