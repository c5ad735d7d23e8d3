// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
updated through the Record* helpers, so callers never touch label values
directly.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - DuckDB snapshot store queries
  - Deduplication runs (clusters, removed items)
  - Reference graph repair and closure sizes
  - Ranking latency, result counts and response cache efficiency
  - Embedding provider calls, vector cache hits and circuit breaker state
  - Snapshot builds and the currently published snapshot

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics
*/
package metrics
