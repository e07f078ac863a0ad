// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LikesRecorded counts likes accepted into the ledger.
	LikesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boostly_likes_recorded_total",
		Help: "Total number of likes appended to the ledger",
	})

	// LikesRejected counts like attempts refused, by reason.
	LikesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boostly_likes_rejected_total",
		Help: "Total number of rejected like attempts by reason",
	}, []string{"reason"})

	// BoostReconciliations counts boost write-backs by scope (company feed or single post).
	BoostReconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boostly_boost_reconciliations_total",
		Help: "Total number of boost reconciliations by scope",
	}, []string{"scope"})

	// TokenVerifications counts session token checks by result.
	TokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boostly_token_verifications_total",
		Help: "Total number of session token verifications by result",
	}, []string{"result"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boostly_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CompanyCacheLookups counts company-id cache lookups by result.
	CompanyCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boostly_company_cache_lookups_total",
		Help: "Company id cache lookups by result",
	}, []string{"result"})

	// NotificationsPublished counts realtime events published, by event type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boostly_notifications_published_total",
		Help: "Total number of realtime notifications published",
	}, []string{"event"})

	// WebSocketConnections is the gauge of connected like-stream clients.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boostly_websocket_connections",
		Help: "Number of active like-stream WebSocket connections",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boostly_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
