// Package metrics exposes Prometheus counters for scheduler runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the scheduler's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Runs            *prometheus.CounterVec
	PublishFailures prometheus.Counter
	PublishLatency  prometheus.Histogram
	PoolRestarts    prometheus.Counter
	Consumed        prometheus.Gauge
	PoolSize        prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWith(reg, reg)
}

// NewWith registers collectors on reg and serves them from g.
func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcaster_runs_total",
			Help: "Scheduler runs by final state",
		}, []string{"state"}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "pollcaster_publish_failures_total",
			Help: "Publish calls that returned an error",
		}),
		PublishLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pollcaster_publish_duration_seconds",
			Help:    "Publish call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		PoolRestarts: f.NewCounter(prometheus.CounterOpts{
			Name: "pollcaster_pool_resets_total",
			Help: "Times the content pool was exhausted and restarted",
		}),
		Consumed: f.NewGauge(prometheus.GaugeOpts{
			Name: "pollcaster_tracker_consumed",
			Help: "Poll ids delivered since the last reset",
		}),
		PoolSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "pollcaster_pool_size",
			Help: "Polls in the content pool",
		}),
		gatherer: g,
	}
}

func (m *Metrics) RunFinished(state string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(state).Inc()
}

func (m *Metrics) PublishObserved(seconds float64, err error) {
	if m == nil {
		return
	}
	m.PublishLatency.Observe(seconds)
	if err != nil {
		m.PublishFailures.Inc()
	}
}

func (m *Metrics) PoolRestarted() {
	if m == nil {
		return
	}
	m.PoolRestarts.Inc()
}

func (m *Metrics) Progress(consumed, size int) {
	if m == nil {
		return
	}
	m.Consumed.Set(float64(consumed))
	m.PoolSize.Set(float64(size))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
