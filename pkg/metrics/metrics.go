package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Progression transitions, by entity type, request kind and outcome
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_transitions_total",
			Help: "Total number of progression transition attempts",
		},
		[]string{"entity", "request", "outcome"},
	)

	// Rejections broken down by error kind
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_rejections_total",
			Help: "Total number of rejected progression transitions",
		},
		[]string{"entity", "kind"},
	)

	// DB query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// Outbox dispatch latency (milliseconds)
	OutboxDispatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbox_dispatch_latency_ms",
			Help:    "Outbox event dispatch latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"routing_key", "status"},
	)

	// Timeline cache hits/misses
	TimelineCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_cache_total",
			Help: "Timeline read cache lookups",
		},
		[]string{"result"}, // hit / miss / bypass
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordTransition(entity, request, outcome string) {
	TransitionsTotal.WithLabelValues(entity, request, outcome).Inc()
}

func RecordRejection(entity, kind string) {
	RejectionsTotal.WithLabelValues(entity, kind).Inc()
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func RecordOutboxDispatch(routingKey, status string, duration time.Duration) {
	OutboxDispatchLatency.WithLabelValues(routingKey, status).Observe(float64(duration.Milliseconds()))
}

func RecordTimelineCache(result string) {
	TimelineCacheTotal.WithLabelValues(result).Inc()
}
