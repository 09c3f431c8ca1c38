package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HuntMetrics records service-level counters for the scoring engine.
type HuntMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
	RecordSubmission(ctx context.Context, result string)
	RecordPointsAwarded(ctx context.Context, cohort string, points int)
	RecordTransientRetry(ctx context.Context, operation string)
	RecordInvalidation(ctx context.Context)
	RecordNotification(ctx context.Context, outcome string)
}

type prometheusMetrics struct {
	operations    *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	submissions   *prometheus.CounterVec
	points        *prometheus.CounterVec
	retries       *prometheus.CounterVec
	invalidations prometheus.Counter
	notifications *prometheus.CounterVec
}

// NewPrometheusMetrics registers the hunt collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) HuntMetrics {
	m := &prometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flaghunt",
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flaghunt",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flaghunt",
			Name:      "submissions_total",
			Help:      "Flag submissions by result.",
		}, []string{"result"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flaghunt",
			Name:      "points_awarded_total",
			Help:      "Points awarded per cohort.",
		}, []string{"cohort"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flaghunt",
			Name:      "transient_retries_total",
			Help:      "Transactions retried after a lock or serialization conflict.",
		}, []string{"operation"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flaghunt",
			Name:      "invalidations_total",
			Help:      "Completions reversed by an administrator.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flaghunt",
			Name:      "first_solve_notifications_total",
			Help:      "First-solve notifications by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.operations, m.durations, m.submissions, m.points, m.retries, m.invalidations, m.notifications)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "attempt").Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "success").Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "failure").Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordSubmission(_ context.Context, result string) {
	m.submissions.WithLabelValues(result).Inc()
}

func (m *prometheusMetrics) RecordPointsAwarded(_ context.Context, cohort string, points int) {
	m.points.WithLabelValues(cohort).Add(float64(points))
}

func (m *prometheusMetrics) RecordTransientRetry(_ context.Context, operation string) {
	m.retries.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordInvalidation(_ context.Context) {
	m.invalidations.Inc()
}

func (m *prometheusMetrics) RecordNotification(_ context.Context, outcome string) {
	m.notifications.WithLabelValues(outcome).Inc()
}

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoopMetrics) RecordSubmission(context.Context, string)                       {}
func (NoopMetrics) RecordPointsAwarded(context.Context, string, int)               {}
func (NoopMetrics) RecordTransientRetry(context.Context, string)                   {}
func (NoopMetrics) RecordInvalidation(context.Context)                             {}
func (NoopMetrics) RecordNotification(context.Context, string)                     {}
