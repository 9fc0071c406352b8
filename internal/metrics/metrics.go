// Package metrics exposes workflow and notification counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	// Workflow operation outcomes by operation and result code
	WorkflowOps *prometheus.CounterVec

	// Workflow operation latency by operation
	WorkflowLatency *prometheus.HistogramVec

	// Notification deliveries by channel and outcome
	Notifications *prometheus.CounterVec

	// Notifications dropped because the queue was full
	NotificationsDropped prometheus.Counter
}

// New registers the governance metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WorkflowOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "workflow",
			Name:      "operations_total",
			Help:      "Workflow operations by operation and result",
		}, []string{"operation", "result"}),

		WorkflowLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "governance",
			Subsystem: "workflow",
			Name:      "operation_duration_seconds",
			Help:      "Duration of workflow operations including the transaction",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "notification",
			Name:      "deliveries_total",
			Help:      "Notification deliveries by channel and outcome",
		}, []string{"channel", "outcome"}),

		NotificationsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "notification",
			Name:      "dropped_total",
			Help:      "Notifications dropped because the dispatch queue was full",
		}),
	}
}

// ObserveWorkflow records one workflow call. result is "ok" or an error code.
func (m *Metrics) ObserveWorkflow(operation, result string, d time.Duration) {
	if m != nil {
		m.WorkflowOps.WithLabelValues(operation, result).Inc()
		m.WorkflowLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// IncNotification records a delivery attempt outcome ("sent" or "failed").
func (m *Metrics) IncNotification(channel, outcome string) {
	if m != nil {
		m.Notifications.WithLabelValues(channel, outcome).Inc()
	}
}

// IncDropped records a notification that never reached a worker.
func (m *Metrics) IncDropped() {
	if m != nil {
		m.NotificationsDropped.Inc()
	}
}
