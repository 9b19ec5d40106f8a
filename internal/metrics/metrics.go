package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for a generation run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LearnersTotal       *prometheus.CounterVec
	SessionsTotal       prometheus.Counter
	PassesTotal         *prometheus.CounterVec
	StatementsTotal     *prometheus.CounterVec
	DegradedTraces      prometheus.Counter
	SubmittedStatements *prometheus.CounterVec
	SubmitBatchDuration *prometheus.HistogramVec
	SessionMinutes      prometheus.Histogram
	RunDuration         prometheus.Gauge
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		LearnersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnsim_learners_total",
				Help: "Simulated learners by persona",
			},
			[]string{"persona"},
		),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "learnsim_sessions_total",
			Help: "Learning sessions generated",
		}),
		PassesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnsim_passes_total",
				Help: "Activity passes by outcome",
			},
			[]string{"outcome"},
		),
		StatementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnsim_statements_total",
				Help: "Statements generated by verb",
			},
			[]string{"verb"},
		),
		DegradedTraces: factory.NewCounter(prometheus.CounterOpts{
			Name: "learnsim_degraded_traces_total",
			Help: "Activity passes that fell back to a single event",
		}),
		SubmittedStatements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnsim_submitted_statements_total",
				Help: "Statements accepted by a sink",
			},
			[]string{"sink"},
		),
		SubmitBatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnsim_submit_batch_duration_seconds",
				Help:    "Time to write one statement batch",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"sink", "result"},
		),
		SessionMinutes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "learnsim_session_minutes",
			Help:    "Active minutes per generated session",
			Buckets: prometheus.LinearBuckets(15, 15, 6), // 15 to 90
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "learnsim_run_duration_seconds",
			Help: "Wall time of the last generation run",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncLearner counts one generated learner.
func (m *Metrics) IncLearner(persona string) {
	if m == nil {
		return
	}
	m.LearnersTotal.WithLabelValues(persona).Inc()
}

// ObserveSession counts a session and its active minutes.
func (m *Metrics) ObserveSession(active time.Duration) {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
	m.SessionMinutes.Observe(active.Minutes())
}

// IncPass counts a pass by outcome: passed, failed, exhausted or partial.
func (m *Metrics) IncPass(outcome string) {
	if m == nil {
		return
	}
	m.PassesTotal.WithLabelValues(outcome).Inc()
}

// IncStatement counts a generated statement.
func (m *Metrics) IncStatement(verb string) {
	if m == nil {
		return
	}
	m.StatementsTotal.WithLabelValues(verb).Inc()
}

// IncDegraded counts a degraded trace.
func (m *Metrics) IncDegraded() {
	if m == nil {
		return
	}
	m.DegradedTraces.Inc()
}

// ObserveBatch records one sink write.
func (m *Metrics) ObserveBatch(sink string, n int, dur time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.SubmittedStatements.WithLabelValues(sink).Add(float64(n))
	}
	m.SubmitBatchDuration.WithLabelValues(sink, result).Observe(dur.Seconds())
}

// SetRunDuration records the wall time of a run.
func (m *Metrics) SetRunDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Set(d.Seconds())
}

// WriteTextfile writes every collector in the Prometheus text format,
// for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
