// Package metrics holds the Prometheus collectors shared by the use cases
// and the procedure callers. HTTP collectors live in the middleware package.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every collector exported by the service.
const Namespace = "userdir"

// Operation outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeEmpty     = "empty"
	OutcomeException = "exception"
)

// Business metrics
var (
	// OperationsTotal counts use case results by operation and outcome
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "business",
			Name:      "operations_total",
			Help:      "Total number of directory operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// AuditPublishFailures counts audit events that could not be published
	AuditPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "business",
			Name:      "audit_publish_failures_total",
			Help:      "Total number of audit events that failed to publish",
		},
	)
)

// Database metrics
var (
	// ProcedureCallDuration measures stored procedure latency
	ProcedureCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "db",
			Name:      "procedure_duration_seconds",
			Help:      "Stored procedure call duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"procedure", "label"},
	)

	// ProcedureErrorsTotal counts failed stored procedure calls
	ProcedureErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "db",
			Name:      "procedure_errors_total",
			Help:      "Total number of failed stored procedure calls",
		},
		[]string{"procedure", "label", "op"},
	)

	// DBConnections tracks database pool connections
	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "db",
			Name:      "connections",
			Help:      "Number of database connections",
		},
		[]string{"state"}, // idle, in_use, max
	)
)

// Rate limit metrics
var (
	// RateLimitRejections counts requests refused by a limiter
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of requests rejected by rate limiting",
		},
		[]string{"limiter"},
	)
)

// RecordOperation records the outcome of a use case
func RecordOperation(operation, outcome string) {
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordProcedureCall records a stored procedure call
func RecordProcedureCall(procedure, label string, duration time.Duration) {
	ProcedureCallDuration.WithLabelValues(procedure, label).Observe(duration.Seconds())
}

// RecordProcedureError records a failed stored procedure call
func RecordProcedureError(procedure, label, op string) {
	ProcedureErrorsTotal.WithLabelValues(procedure, label, op).Inc()
}

// UpdateDBConnections updates database connection metrics
func UpdateDBConnections(idle, inUse, max int) {
	DBConnections.WithLabelValues("idle").Set(float64(idle))
	DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	DBConnections.WithLabelValues("max").Set(float64(max))
}

// RecordRateLimitRejection records a rejected request
func RecordRateLimitRejection(limiter string) {
	RateLimitRejections.WithLabelValues(limiter).Inc()
}
