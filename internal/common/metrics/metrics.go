// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PushOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_operations_total",
			Help: "Total subscribe/unsubscribe operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	PushOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_operation_errors_total",
			Help: "Push operation failures by error code",
		},
		[]string{"operation", "error_code"},
	)

	HeartbeatsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_heartbeats_total",
			Help: "Activity heartbeats attempted, by outcome",
		},
		[]string{"outcome"},
	)

	SettingsWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_writes_total",
			Help: "Settings persistence attempts, by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_shown_total",
			Help: "Notifications displayed through the platform",
		},
		[]string{"source"},
	)

	DegradedKeyFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "push_degraded_key_fetches_total",
			Help: "Subscribe flows that proceeded without key material",
		},
	)
)
