package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "videoextend"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the counters of one run. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	reports         *prometheus.CounterVec
	pairs           prometheus.Gauge
	lastRun         prometheus.Gauge
}

// New creates a registry with the run metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Backend generation calls by backend and outcome.",
		}, []string{"backend", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Duration of backend generation calls.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"backend"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Report writes by outcome.",
		}, []string{"outcome"}),
		pairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frame_pairs",
			Help:      "Frame pairs found in the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	m.registry.MustRegister(m.backendCalls, m.backendDuration, m.reports, m.pairs, m.lastRun)
	return m
}

// ObserveBackendCall records one backend call
func (m *Metrics) ObserveBackendCall(backend string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.backendCalls.WithLabelValues(backend, outcome(err)).Inc()
	m.backendDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// ObserveReport records one report write
func (m *Metrics) ObserveReport(err error) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(outcome(err)).Inc()
}

// SetPairs records how many pairs the run found
func (m *Metrics) SetPairs(n int) {
	if m == nil {
		return
	}
	m.pairs.Set(float64(n))
}

// WriteTextfile stamps the finish time and writes all metrics in the text
// exposition format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	m.lastRun.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, m.registry)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
