package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tank_monitor"

// Metrics holds the Prometheus collectors for reading ingestion and tank lifecycle.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ReadingsRegistered   prometheus.Counter
	ReadingsFailed       prometheus.Counter
	ReadingsPruned       prometheus.Counter
	TanksCreated         prometheus.Counter
	ObserverErrors       *prometheus.CounterVec // labels: observer
	RegistrationDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReadingsRegistered,
		m.ReadingsFailed,
		m.ReadingsPruned,
		m.TanksCreated,
		m.ObserverErrors,
		m.RegistrationDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build many.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_registered_total",
			Help:      "Readings persisted.",
		}),
		ReadingsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_failed_total",
			Help:      "Reading registrations that returned an error.",
		}),
		ReadingsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_pruned_total",
			Help:      "Readings removed by age-based pruning.",
		}),
		TanksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tanks_created_total",
			Help:      "Tanks created.",
		}),
		ObserverErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observer_errors_total",
			Help:      "Post-registration notifications that failed, by observer.",
		}, []string{"observer"}),
		RegistrationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reading_registration_duration_seconds",
			Help:      "Time spent registering one reading, storage included.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) ReadingRegistered(seconds float64) {
	if m == nil {
		return
	}
	m.ReadingsRegistered.Inc()
	m.RegistrationDuration.Observe(seconds)
}

func (m *Metrics) ReadingFailed() {
	if m == nil {
		return
	}
	m.ReadingsFailed.Inc()
}

func (m *Metrics) Pruned(n int64) {
	if m == nil {
		return
	}
	m.ReadingsPruned.Add(float64(n))
}

func (m *Metrics) TankCreated() {
	if m == nil {
		return
	}
	m.TanksCreated.Inc()
}

func (m *Metrics) ObserverFailed(observer string) {
	if m == nil {
		return
	}
	m.ObserverErrors.WithLabelValues(observer).Inc()
}
