package searchr

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
)

// Operation outcomes used as the status label.
const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusInvalid  = "invalid"
	statusError    = "error"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchr",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by name and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "searchr",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered
// under the same name so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("searchr: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("searchr: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// statusOf maps an operation error to its outcome. Missing records and bad
// input are the caller's doing and are kept apart from store failures.
func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, domain.ErrDocumentNotFound), errors.Is(err, domain.ErrTagNotFound):
		return statusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidQuery):
		return statusInvalid
	default:
		return statusError
	}
}

// observer logs and counts SDK operations. A nil observer does nothing.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := statusOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}

	fields := []zap.Field{zap.String("op", op), zap.Duration("duration", dur)}
	switch status {
	case statusOK:
		o.logger.Debug("sdk_operation", fields...)
	case statusError:
		o.logger.Warn("sdk_operation_failed", append(fields, zap.Error(err))...)
	default:
		o.logger.Debug("sdk_operation_rejected", append(fields, zap.String("status", status), zap.Error(err))...)
	}
}
