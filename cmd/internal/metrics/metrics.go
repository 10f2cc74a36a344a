// Package metrics exposes Prometheus collectors for the credential stores.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "station"

// Metrics owns a private registry so tests and multiple instances never
// collide on the global one.
type Metrics struct {
	reg *prometheus.Registry

	sweepRuns     *prometheus.CounterVec
	sweepDeleted  *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
	sweepStopped  *prometheus.GaugeVec

	rememberIssued    prometheus.Counter
	rememberValidated *prometheus.CounterVec
	rememberRevoked   prometheus.Counter
}

// New registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Expiry sweeps by sweeper and result.",
		}, []string{"sweeper", "result"}),
		sweepDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "deleted_total",
			Help:      "Rows deleted by expiry sweeps.",
		}, []string{"sweeper"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Duration of a single expiry sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"sweeper"}),
		sweepStopped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "stopped",
			Help:      "1 when a sweeper stopped itself after repeated failures.",
		}, []string{"sweeper"}),
		rememberIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remember",
			Name:      "issued_total",
			Help:      "Remember-me tokens issued.",
		}),
		rememberValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remember",
			Name:      "validations_total",
			Help:      "Remember-me token validations by outcome.",
		}, []string{"outcome"}),
		rememberRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remember",
			Name:      "revoked_total",
			Help:      "Remember-me tokens explicitly revoked.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sweepRuns,
		m.sweepDeleted,
		m.sweepDuration,
		m.sweepStopped,
		m.rememberIssued,
		m.rememberValidated,
		m.rememberRevoked,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// SweepRun implements sweep.Observer.
func (m *Metrics) SweepRun(name string, deleted int64, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sweepRuns.WithLabelValues(name, result).Inc()
	if deleted > 0 {
		m.sweepDeleted.WithLabelValues(name).Add(float64(deleted))
	}
	m.sweepDuration.WithLabelValues(name).Observe(took.Seconds())
	m.sweepStopped.WithLabelValues(name).Set(0)
}

// SweepStopped implements sweep.Observer.
func (m *Metrics) SweepStopped(name string) {
	m.sweepStopped.WithLabelValues(name).Set(1)
}

// TokenIssued implements remember.Observer.
func (m *Metrics) TokenIssued() { m.rememberIssued.Inc() }

// TokenValidated implements remember.Observer.
func (m *Metrics) TokenValidated(outcome string) {
	m.rememberValidated.WithLabelValues(outcome).Inc()
}

// TokensRevoked implements remember.Observer.
func (m *Metrics) TokensRevoked(n int64) {
	if n > 0 {
		m.rememberRevoked.Add(float64(n))
	}
}
