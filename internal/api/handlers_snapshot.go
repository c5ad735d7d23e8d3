// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package api

import (
	"net/http"
	"time"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/recommend"
)

// SnapshotView describes the serving snapshot.
type SnapshotView struct {
	Version         string               `json:"version"`
	BuiltAt         time.Time            `json:"built_at"`
	Provider        string               `json:"provider"`
	Items           int                  `json:"items"`
	Edges           int                  `json:"edges"`
	Vectors         int                  `json:"vectors"`
	PopularityKnown bool                 `json:"popularity_known"`
	Stats           recommend.BuildStats `json:"stats"`
	Report          catalog.Summary      `json:"report"`
}

// Snapshot handles GET /api/v1/snapshot
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.engine.Snapshot()
	if snap == nil {
		respondServiceError(rw, r, recommend.ErrNotReady, "describe snapshot")
		return
	}

	rw.SuccessWithMeta(SnapshotView{
		Version:         snap.Version.String(),
		BuiltAt:         snap.BuiltAt,
		Provider:        snap.Provider,
		Items:           snap.Catalog.Len(),
		Edges:           snap.Graph.EdgeCount(),
		Vectors:         len(snap.Vectors),
		PopularityKnown: snap.Catalog.PopularityKnown(),
		Stats:           snap.Stats,
		Report:          snap.Report,
	}, &APIMeta{SnapshotVersion: snap.Version.String()})
}

// Snapshots handles GET /api/v1/snapshots, newest first.
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.history == nil {
		rw.ServiceUnavailable("Snapshot persistence is not configured")
		return
	}

	list, err := h.history.ListSnapshots(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	count := len(list)
	rw.SuccessWithMeta(list, &APIMeta{Count: &count})
}

// BuildStatus handles GET /api/v1/snapshot/build
func (h *Handler) BuildStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.builds == nil {
		rw.ServiceUnavailable("Snapshot builds are not configured")
		return
	}

	status := h.builds.LastStatus()
	if status == nil {
		rw.NotFound("No snapshot build has run yet")
		return
	}
	rw.Success(status)
}

// Rebuild handles POST /api/v1/snapshot/rebuild. The build runs in the
// background; poll /api/v1/snapshot/build for the outcome.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.builds == nil {
		rw.ServiceUnavailable("Snapshot builds are not configured")
		return
	}

	if err := h.builds.RequestRebuild(); err != nil {
		respondServiceError(rw, r, err, "queue rebuild")
		return
	}

	h.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Snapshot rebuild requested")
	rw.Accepted(map[string]interface{}{
		"queued": true,
	})
}

// Performance handles GET /api/v1/performance
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.perfMon == nil {
		rw.ServiceUnavailable("Performance monitoring is disabled")
		return
	}

	stats := h.perfMon.GetStats()
	count := len(stats)
	rw.SuccessWithMeta(stats, &APIMeta{Count: &count})
}
