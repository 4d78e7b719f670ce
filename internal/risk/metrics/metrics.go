package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for risk detection.
type Metrics struct {
	RisksDetected *prometheus.CounterVec
	RisksResolved prometheus.Counter
	ScanDuration  prometheus.Histogram
}

// New creates and registers all risk metrics.
func New() *Metrics {
	return &Metrics{
		RisksDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lekha_risks_detected_total",
			Help: "Risks detected, by type and severity",
		}, []string{"type", "severity"}),

		RisksResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lekha_risks_resolved_total",
			Help: "Risks marked resolved",
		}),

		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lekha_risk_scan_duration_ms",
			Help:    "Latency of batch risk scans in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// IncDetected records one detected risk.
func (m *Metrics) IncDetected(riskType, severity string) {
	if m != nil {
		m.RisksDetected.WithLabelValues(riskType, severity).Inc()
	}
}

// IncResolved records a resolution.
func (m *Metrics) IncResolved() {
	if m != nil {
		m.RisksResolved.Inc()
	}
}

// ObserveScan records batch scan latency.
func (m *Metrics) ObserveScan(ms float64) {
	if m != nil {
		m.ScanDuration.Observe(ms)
	}
}
