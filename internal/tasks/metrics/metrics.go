package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the task orchestrator.
type Metrics struct {
	TasksCreated      *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	OverdueSwept      prometheus.Counter
}

// New creates and registers all task metrics.
func New() *Metrics {
	return &Metrics{
		TasksCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lekha_tasks_created_total",
			Help: "Task instances created, by rule category and priority",
		}, []string{"category", "priority"}),

		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lekha_task_status_transitions_total",
			Help: "Task status transitions",
		}, []string{"from", "to"}),

		OverdueSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lekha_tasks_overdue_swept_total",
			Help: "Tasks flipped to overdue by the sweep",
		}),
	}
}

// IncCreated records a created task.
func (m *Metrics) IncCreated(category, priority string) {
	if m != nil {
		m.TasksCreated.WithLabelValues(category, priority).Inc()
	}
}

// IncTransition records a status transition.
func (m *Metrics) IncTransition(from, to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(from, to).Inc()
	}
}

// AddOverdueSwept records tasks flipped by one sweep.
func (m *Metrics) AddOverdueSwept(n int) {
	if m != nil {
		m.OverdueSwept.Add(float64(n))
	}
}
