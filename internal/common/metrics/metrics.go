// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_started_total",
			Help: "Total number of chat sessions started",
		},
	)

	ChatTurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_processed_total",
			Help: "Total number of conversation turns processed per step",
		},
		[]string{"step"},
	)

	ChatValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_validation_failures_total",
			Help: "Total number of rejected user inputs per step",
		},
		[]string{"step"},
	)

	ChatContactRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_contact_requests_total",
			Help: "Total number of contact requests created",
		},
		[]string{"kind"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "chat_recommendation_duration_seconds",
			Help: "Duration of recommendation matching in seconds",
		},
	)

	RecommendationEmpty = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_recommendation_empty_total",
			Help: "Total number of recommendation queries with zero matching courses",
		},
	)

	AnalyticsEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_analytics_events_dropped_total",
			Help: "Total number of analytics events dropped by the dispatcher",
		},
	)
)
