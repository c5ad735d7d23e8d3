// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package api serves the recommendation engine over HTTP.

Routes are registered on a chi router. Every JSON response uses the
APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Endpoints:

	GET      /api/v1/health/live
	GET      /api/v1/health/ready
	GET|POST /api/v1/recommend                      book_title, num
	GET      /api/v1/items/lookup                   q
	GET      /api/v1/items/{itemID}/similar         k
	POST     /api/v1/recommendations/history        {"items": [...], "k": n}
	GET      /api/v1/recommendations/author/{authorID}
	GET      /api/v1/recommendations/tag/{tag}      min_rating, k
	GET      /api/v1/snapshot
	GET      /api/v1/snapshot/build
	POST     /api/v1/snapshot/rebuild
	GET      /api/v1/snapshots
	GET      /api/v1/performance
	GET      /metrics

Error mapping:

  - catalog.ErrNotFound: 404 NOT_FOUND
  - catalog.ErrNoRecommendations: 404 NO_RECOMMENDATIONS
  - request validation: 400 VALIDATION_ERROR
  - recommend.ErrNotReady: 503 SERVICE_UNAVAILABLE
  - pipeline.ErrBuildInProgress: 409 CONFLICT
  - anything else: 500 INTERNAL_ERROR
*/
package api
