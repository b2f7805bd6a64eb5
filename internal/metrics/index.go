package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Index sync Prometheus metrics.
var (
	SyncMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_messages_total",
			Help:      "Index queue messages processed by the sync daemon",
		},
		[]string{"outcome"}, // upserted / deleted / missing / malformed / failed
	)

	IndexCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_commits_total",
			Help:      "Index batch commits",
		},
		[]string{"status"}, // "ok" / "error"
	)

	IndexCommitOpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_commit_operations_total",
			Help:      "Buffered operations committed to the index",
		},
	)

	IndexCommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_commit_duration_seconds",
			Help:      "Index batch commit duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	IndexBufferPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_buffer_pending",
			Help:      "Operations buffered in the index writer and not yet committed",
		},
	)
)

var registerIndexOnce sync.Once

// RegisterIndexMetrics registers index sync metrics. Safe to call more than once.
func RegisterIndexMetrics() {
	registerIndexOnce.Do(func() {
		prometheus.MustRegister(SyncMessagesTotal)
		prometheus.MustRegister(IndexCommitsTotal)
		prometheus.MustRegister(IndexCommitOpsTotal)
		prometheus.MustRegister(IndexCommitDuration)
		prometheus.MustRegister(IndexBufferPending)
	})
}

// SyncObserver feeds writer and daemon activity into the index metrics.
type SyncObserver struct{}

// ObserveCommit records one batch commit.
func (SyncObserver) ObserveCommit(ops int, took time.Duration, err error) {
	if err != nil {
		IndexCommitsTotal.WithLabelValues("error").Inc()
		return
	}
	IndexCommitsTotal.WithLabelValues("ok").Inc()
	IndexCommitOpsTotal.Add(float64(ops))
	IndexCommitDuration.Observe(took.Seconds())
}

// SetPending tracks the writer buffer size.
func (SyncObserver) SetPending(n int) {
	IndexBufferPending.Set(float64(n))
}

// ObserveMessage counts one processed queue message.
func (SyncObserver) ObserveMessage(outcome string) {
	SyncMessagesTotal.WithLabelValues(outcome).Inc()
}
