// Package metrics provides Prometheus metrics for the Sequoia service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks inbound HTTP requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sequoia",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sequoia",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// FailureReportsTotal tracks part failure reports by outcome
	FailureReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sequoia",
			Subsystem: "failures",
			Name:      "reports_total",
			Help:      "Total number of part failure reports by outcome",
		},
		[]string{"status"},
	)

	// AnalyticsCacheHits tracks analytics documents served from cache
	AnalyticsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sequoia",
			Subsystem: "analytics",
			Name:      "cache_hits_total",
			Help:      "Total number of analytics cache hits",
		},
	)

	// AnalyticsCacheMisses tracks analytics documents recomputed from the ledger
	AnalyticsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sequoia",
			Subsystem: "analytics",
			Name:      "cache_misses_total",
			Help:      "Total number of analytics cache misses",
		},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sequoia",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sequoia",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// GraphWritesTotal tracks lineage graph writes by operation and status
	GraphWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sequoia",
			Subsystem: "graph",
			Name:      "writes_total",
			Help:      "Total number of lineage graph writes",
		},
		[]string{"operation", "status"},
	)
)

// RecordHTTPRequest records an inbound HTTP request metric
func RecordHTTPRequest(method, path, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// RecordFailureReport records a failure report outcome
func RecordFailureReport(status string) {
	FailureReportsTotal.WithLabelValues(status).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}

// RecordGraphWrite records a lineage graph write
func RecordGraphWrite(operation, status string) {
	GraphWritesTotal.WithLabelValues(operation, status).Inc()
}
