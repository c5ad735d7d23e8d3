// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK once a snapshot is published and the database answers,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snapshotReady := h.engine.Ready()
	dbConnected := true
	if h.history != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		dbConnected = h.history.Ping(ctx) == nil
		cancel()
	}

	details := map[string]interface{}{
		"ready":              snapshotReady && dbConnected,
		"snapshot_published": snapshotReady,
		"database_connected": dbConnected,
	}
	if snap := h.engine.Snapshot(); snap != nil {
		details["snapshot_version"] = snap.Version.String()
	}

	if !snapshotReady || !dbConnected {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service is not ready", details)
		return
	}
	rw.Success(details)
}
