package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drobeo_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AIRequests counts external model calls by operation and outcome.
	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drobeo_ai_requests_total",
		Help: "External model calls by operation and outcome",
	}, []string{"operation", "outcome"})

	// AIRequestLatency records external model latency by operation.
	AIRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drobeo_ai_request_duration_seconds",
		Help:    "External model call latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"operation"})

	// OutfitsGenerated counts AI outfits persisted.
	OutfitsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drobeo_outfits_generated_total",
		Help: "AI-generated outfits persisted",
	})

	// VerificationCodes counts verification code lifecycle events.
	VerificationCodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drobeo_verification_codes_total",
		Help: "Verification code events (issued, delivered, delivery_failed, consumed, rejected)",
	}, []string{"event"})

	// CacheLookups counts cache-aside lookups by cache name and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drobeo_cache_lookups_total",
		Help: "Cache lookups by cache and result (hit, miss)",
	}, []string{"cache", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackAI returns a function that records one external model call. Pass the
// call's error to the returned function.
func TrackAI(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		AIRequestLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		AIRequests.WithLabelValues(operation, outcome).Inc()
	}
}
