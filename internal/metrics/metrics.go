// Package metrics provides Prometheus metrics for termvault.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
)

// Metrics holds all Prometheus metrics for termvault
type Metrics struct {
	Registry *prometheus.Registry

	PersistTotal       *prometheus.CounterVec
	PersistDuration    *prometheus.HistogramVec
	RollbacksTotal     *prometheus.CounterVec
	ReindexRefsTotal   *prometheus.CounterVec
	ReindexErrorsTotal prometheus.Counter
	ResolutionsTotal   *prometheus.CounterVec
}

// NewMetrics creates all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{Registry: reg}

	m.PersistTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termvault_persist_total",
			Help: "Total number of versioned writes by entity, operation and outcome",
		},
		[]string{"entity", "operation", "outcome"},
	)

	m.PersistDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "termvault_persist_duration_seconds",
			Help:    "Duration of versioned writes in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"entity", "operation"},
	)

	m.RollbacksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termvault_rollbacks_total",
			Help: "Total number of rolled back transactions",
		},
		[]string{"entity"},
	)

	m.ReindexRefsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termvault_reindex_refs_total",
			Help: "Total number of index references flushed after commit",
		},
		[]string{"kind"},
	)

	m.ReindexErrorsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "termvault_reindex_errors_total",
			Help: "Total number of failed index flushes",
		},
	)

	m.ResolutionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termvault_mapping_resolutions_total",
			Help: "Total number of mapping endpoints bound to a concept or source",
		},
		[]string{"target"},
	)

	return m
}

// RecordPersist records one versioned write.
func (m *Metrics) RecordPersist(entity, operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.PersistTotal.WithLabelValues(entity, operation, outcome).Inc()
	m.PersistDuration.WithLabelValues(entity, operation).Observe(seconds)
	if outcome == OutcomeRolledBack {
		m.RollbacksTotal.WithLabelValues(entity).Inc()
	}
}

// RecordReindex records flushed index references of one kind.
func (m *Metrics) RecordReindex(kind string, count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ReindexErrorsTotal.Inc()
		return
	}
	m.ReindexRefsTotal.WithLabelValues(kind).Add(float64(count))
}

// RecordResolutions records endpoints bound by a re-resolution pass.
func (m *Metrics) RecordResolutions(target string, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.ResolutionsTotal.WithLabelValues(target).Add(float64(count))
}
