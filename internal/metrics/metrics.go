// Package metrics exposes the Prometheus collectors used across the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records register/login attempts by action and result
	// (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_connect_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"action", "result"},
	)

	// StatusTransitions counts decisions on applications and mentorship
	// requests.
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_connect_status_transitions_total",
			Help: "Total number of status transitions by entity and target status",
		},
		[]string{"entity", "status"},
	)

	// NotificationsCreated counts stored notifications by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_connect_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	// NotificationPublishFailures counts events that could not be handed to
	// the broker.
	NotificationPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alumni_connect_notification_publish_failures_total",
			Help: "Notification events that failed to publish",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alumni_connect_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func Result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
