// Package metrics exposes Prometheus collectors for draft operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aiwriter"

// Draft operation names used as the "op" label.
const (
	OpGenerate = "generate"
	OpUpdate   = "update"
	OpApply    = "apply"
)

// Metrics counts draft operations and times them. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	errs     *prometheus.CounterVec
	dur      *prometheus.HistogramVec
	llmDur   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_operations_total",
			Help:      "Total draft operations executed.",
		}, []string{"op"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_operation_errors_total",
			Help:      "Total draft operations that failed.",
		}, []string{"op"}),
		dur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draft_operation_duration_seconds",
			Help:      "Draft operation duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		llmDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_completion_duration_seconds",
			Help:      "Time spent waiting for the language model.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
	}
	reg.MustRegister(m.ops, m.errs, m.dur, m.llmDur,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one finished operation.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op).Inc()
	m.dur.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errs.WithLabelValues(op).Inc()
	}
}

// ObserveCompletion records the latency of one model call.
func (m *Metrics) ObserveCompletion(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmDur.WithLabelValues(provider).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
