package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for event processing.
type Metrics struct {
	EventsProcessed   *prometheus.CounterVec
	RulesMatched      prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	RuleFailures      prometheus.Counter
	CyclesDetected    prometheus.Counter
	ProcessDuration   prometheus.Histogram
}

// New creates and registers all trigger metrics.
func New() *Metrics {
	return &Metrics{
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lekha_events_processed_total",
			Help: "Compliance events processed, by event type",
		}, []string{"event_type"}),

		RulesMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lekha_rules_matched_total",
			Help: "Rules matched across all processed events",
		}),

		DuplicatesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lekha_duplicate_derivations_skipped_total",
			Help: "Task derivations suppressed by window dedupe",
		}),

		RuleFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lekha_rule_derivation_failures_total",
			Help: "Rules whose task derivation failed",
		}),

		CyclesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lekha_rule_cycles_detected_total",
			Help: "Dependency cycles reported during resolution",
		}),

		ProcessDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lekha_event_process_duration_ms",
			Help:    "Latency of event processing in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// IncProcessed records one processed event.
func (m *Metrics) IncProcessed(eventType string) {
	if m != nil {
		m.EventsProcessed.WithLabelValues(eventType).Inc()
	}
}

// AddMatched records rules matched for one event.
func (m *Metrics) AddMatched(n int) {
	if m != nil {
		m.RulesMatched.Add(float64(n))
	}
}

// IncDuplicate records a suppressed derivation.
func (m *Metrics) IncDuplicate() {
	if m != nil {
		m.DuplicatesSkipped.Inc()
	}
}

// IncFailure records a failed derivation.
func (m *Metrics) IncFailure() {
	if m != nil {
		m.RuleFailures.Inc()
	}
}

// AddCycles records cycles reported during resolution.
func (m *Metrics) AddCycles(n int) {
	if m != nil {
		m.CyclesDetected.Add(float64(n))
	}
}

// ObserveDuration records end-to-end processing latency.
func (m *Metrics) ObserveDuration(ms float64) {
	if m != nil {
		m.ProcessDuration.Observe(ms)
	}
}
