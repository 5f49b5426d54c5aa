package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "friendnet_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthAttemptsTotal counts authentication attempts by kind and result.
	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendnet_auth_attempts_total",
		Help: "Total number of authentication attempts by kind and result",
	}, []string{"kind", "result"})

	// FriendRequestsTotal counts friend request operations by outcome.
	FriendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendnet_friend_requests_total",
		Help: "Total number of friend request operations by outcome",
	}, []string{"outcome"})

	// ActiveTokensRevoked counts tokens revoked via logout.
	ActiveTokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "friendnet_tokens_revoked_total",
		Help: "Total number of tokens revoked via logout",
	})
)

// Friend request outcome labels.
const (
	FriendRequestOutcomeSent        = "sent"
	FriendRequestOutcomeAccepted    = "accepted"
	FriendRequestOutcomeRejected    = "rejected"
	FriendRequestOutcomeDuplicate   = "duplicate"
	FriendRequestOutcomeRateLimited = "rate_limited"
)

// RecordAuthAttempt increments the auth attempts counter.
func RecordAuthAttempt(kind string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	AuthAttemptsTotal.WithLabelValues(kind, result).Inc()
}

// RecordFriendRequest increments the friend request outcome counter.
func RecordFriendRequest(outcome string) {
	FriendRequestsTotal.WithLabelValues(outcome).Inc()
}

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
