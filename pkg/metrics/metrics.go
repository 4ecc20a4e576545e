// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MergesTotal tracks merges by outcome and error kind
	MergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "merge",
			Name:      "merges_total",
			Help:      "Total number of merges by status and error kind",
		},
		[]string{"status", "kind"},
	)

	// MergeDuration tracks merge duration in seconds
	MergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "merge",
			Name:      "duration_seconds",
			Help:      "Duration of merges in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// MergedRows tracks rows produced by successful merges
	MergedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "merge",
			Name:      "rows_total",
			Help:      "Total number of rows produced by successful merges",
		},
	)

	// RecommendationsTotal tracks recommendation calls by status
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "recommend",
			Name:      "requests_total",
			Help:      "Total number of recommendation calls by status",
		},
		[]string{"status"},
	)

	// RecommendationDuration tracks recommendation duration in seconds
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "recommend",
			Name:      "duration_seconds",
			Help:      "Duration of recommendation calls in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// EmbeddingCacheLookups tracks embedding cache lookups by result
	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "embedding",
			Name:      "cache_lookups_total",
			Help:      "Total number of embedding cache lookups by result",
		},
		[]string{"result"},
	)

	// FormulaEvaluations tracks dry-run formula evaluations by status
	FormulaEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "formula",
			Name:      "evaluations_total",
			Help:      "Total number of formula dry runs by status",
		},
		[]string{"status"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)
)

// RecordMerge records a merge outcome. kind is empty on success.
func RecordMerge(status, kind string, rows int, durationSeconds float64) {
	MergesTotal.WithLabelValues(status, kind).Inc()
	MergeDuration.Observe(durationSeconds)
	if rows > 0 {
		MergedRows.Add(float64(rows))
	}
}

// RecordRecommendation records a recommendation call
func RecordRecommendation(status string, durationSeconds float64) {
	RecommendationsTotal.WithLabelValues(status).Inc()
	RecommendationDuration.Observe(durationSeconds)
}

// RecordEmbeddingCacheLookup records a cache hit or miss
func RecordEmbeddingCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	EmbeddingCacheLookups.WithLabelValues(result).Inc()
}

// RecordFormulaEvaluation records a formula dry run
func RecordFormulaEvaluation(status string) {
	FormulaEvaluations.WithLabelValues(status).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}
