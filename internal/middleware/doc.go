// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package middleware provides HTTP middleware components for the query API.

Key Components:

  - RequestID: UUID-based request tracking, propagated into logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight instrumentation
    labelled by chi route pattern
  - Compression: gzip response bodies for clients that accept it
  - PerformanceMonitor: sliding window of per-route latency percentiles with
    slow request warnings

Middleware Stack:

The router in internal/api installs the components in this order:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(corsOptions))
	r.Use(httprate.Limit(...))
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.Use(middleware.Compression)

Route patterns are only known once chi has matched the request, so the
metrics and performance middleware read the pattern after calling the next
handler.

Thread Safety:

All middleware components are safe for concurrent use. The performance
monitor guards its window with a sync.RWMutex.

See Also:

  - internal/api: HTTP handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
