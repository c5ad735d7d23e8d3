// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently in flight",
		},
	)

	// Deduplication Metrics
	DedupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsys_dedup_duration_seconds",
			Help:    "Duration of catalog deduplication runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	DedupClustersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_dedup_clusters_total",
			Help: "Total number of duplicate clusters found",
		},
		[]string{"kind"}, // "exact", "fuzzy"
	)

	DedupRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsys_dedup_removed_items_total",
			Help: "Total number of items removed as duplicates",
		},
	)

	// Reference Graph Metrics
	GraphEdgesRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_graph_edges_removed_total",
			Help: "Total number of reference edges removed by repair",
		},
		[]string{"reason"}, // "dangling", "self_loop"
	)

	GraphClosureSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsys_graph_closure_size",
			Help:    "Number of items in computed reference closures",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// Ranking Metrics
	RankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recsys_rank_duration_seconds",
			Help:    "Duration of ranking requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"mode"}, // "similar", "history", "author", "tag"
	)

	RankResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recsys_rank_results",
			Help:    "Number of results returned per ranking request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	RankCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsys_rank_cache_hits_total",
			Help: "Total number of ranking responses served from cache",
		},
	)

	RankCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsys_rank_cache_misses_total",
			Help: "Total number of ranking responses computed",
		},
	)

	// Embedding Metrics
	EmbeddingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_embedding_requests_total",
			Help: "Total number of embedding provider calls",
		},
		[]string{"provider", "status"}, // status: "success", "error"
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsys_embedding_cache_hits_total",
			Help: "Total number of content vectors served from the vector cache",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsys_embedding_cache_misses_total",
			Help: "Total number of content vectors not found in the vector cache",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// Snapshot Metrics
	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsys_snapshot_build_duration_seconds",
			Help:    "Duration of snapshot builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
	)

	SnapshotBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_snapshot_builds_total",
			Help: "Total number of snapshot builds",
		},
		[]string{"status"}, // "success", "error"
	)

	SnapshotItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recsys_snapshot_items",
			Help: "Number of items in the published snapshot",
		},
	)

	SnapshotEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recsys_snapshot_edges",
			Help: "Number of reference edges in the published snapshot",
		},
	)

	SnapshotPublishedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recsys_snapshot_published_timestamp_seconds",
			Help: "Unix time the current snapshot was published",
		},
	)

	SnapshotWarnings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recsys_snapshot_warnings",
			Help: "Warnings collected while building the published snapshot",
		},
		[]string{"kind"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDedup records the outcome of a deduplication run
func RecordDedup(duration time.Duration, exactClusters, fuzzyClusters, removed int) {
	DedupDuration.Observe(duration.Seconds())
	DedupClustersTotal.WithLabelValues("exact").Add(float64(exactClusters))
	DedupClustersTotal.WithLabelValues("fuzzy").Add(float64(fuzzyClusters))
	DedupRemovedTotal.Add(float64(removed))
}

// RecordGraphRepair records edges removed by a graph repair
func RecordGraphRepair(dangling, selfLoops int) {
	GraphEdgesRemovedTotal.WithLabelValues("dangling").Add(float64(dangling))
	GraphEdgesRemovedTotal.WithLabelValues("self_loop").Add(float64(selfLoops))
}

// RecordClosure records the size of a computed closure
func RecordClosure(seeds, size int) {
	if seeds == 0 {
		return
	}
	GraphClosureSize.Observe(float64(size))
}

// RecordRank records a ranking request
func RecordRank(mode string, duration time.Duration, results int) {
	RankDuration.WithLabelValues(mode).Observe(duration.Seconds())
	RankResults.WithLabelValues(mode).Observe(float64(results))
}

// RecordRankCache records a response cache lookup
func RecordRankCache(hit bool) {
	if hit {
		RankCacheHits.Inc()
	} else {
		RankCacheMisses.Inc()
	}
}

// RecordEmbeddingRequest records an embedding provider call
func RecordEmbeddingRequest(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EmbeddingRequestsTotal.WithLabelValues(provider, status).Inc()
}

// RecordEmbeddingCache records a vector cache lookup
func RecordEmbeddingCache(hit bool) {
	if hit {
		EmbeddingCacheHits.Inc()
	} else {
		EmbeddingCacheMisses.Inc()
	}
}

// RecordSnapshotBuild records a snapshot build attempt
func RecordSnapshotBuild(duration time.Duration, err error) {
	SnapshotBuildDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotBuildsTotal.WithLabelValues("error").Inc()
		return
	}
	SnapshotBuildsTotal.WithLabelValues("success").Inc()
}

// RecordSnapshotPublished updates the gauges describing the live snapshot
func RecordSnapshotPublished(items, edges int, warnings map[string]int, at time.Time) {
	SnapshotItems.Set(float64(items))
	SnapshotEdges.Set(float64(edges))
	SnapshotPublishedTimestamp.Set(float64(at.Unix()))
	SnapshotWarnings.Reset()
	for kind, n := range warnings {
		SnapshotWarnings.WithLabelValues(kind).Set(float64(n))
	}
}
