// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/database"
	"github.com/nrchnnas/recsys/internal/middleware"
	"github.com/nrchnnas/recsys/internal/pipeline"
	"github.com/nrchnnas/recsys/internal/recommend"
)

// Recommender answers ranking queries from the serving snapshot.
type Recommender interface {
	Ready() bool
	Snapshot() *recommend.Snapshot
	FindItem(query string) (catalog.Item, error)
	Similar(ctx context.Context, query string, k int) (*recommend.Response, error)
	ForHistory(ctx context.Context, queries []string, k int) (*recommend.Response, error)
	ByAuthor(ctx context.Context, authorID string, k int) (*recommend.Response, error)
	ByTag(ctx context.Context, tag string, minQuality float64, k int) (*recommend.Response, error)
}

// BuildController queues snapshot rebuilds and reports their status.
type BuildController interface {
	// RequestRebuild queues a rebuild. It returns pipeline.ErrBuildInProgress
	// when a build is running or already queued.
	RequestRebuild() error
	LastStatus() *pipeline.Status
}

// SnapshotHistory lists persisted snapshots.
type SnapshotHistory interface {
	ListSnapshots(ctx context.Context) ([]database.SnapshotInfo, error)
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and readiness probes
//   - handlers_recommend.go: ranking and lookup endpoints
//   - handlers_snapshot.go: snapshot inspection and rebuilds
type Handler struct {
	engine       Recommender
	builds       BuildController
	history      SnapshotHistory
	perfMon      *middleware.PerformanceMonitor
	queryTimeout time.Duration
	startTime    time.Time
	logger       zerolog.Logger
}

// HandlerOptions carries the optional collaborators of a Handler.
type HandlerOptions struct {
	// Builds is nil when rebuilds cannot be triggered over HTTP.
	Builds BuildController

	// History is nil when snapshots are not persisted.
	History SnapshotHistory

	// PerfMon is nil when the performance monitor is disabled.
	PerfMon *middleware.PerformanceMonitor

	// QueryTimeout bounds each ranking query. Zero means 10 seconds.
	QueryTimeout time.Duration
}

// NewHandler creates a new API handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(engine Recommender, opts HandlerOptions, logger zerolog.Logger) *Handler {
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		engine:       engine,
		builds:       opts.Builds,
		history:      opts.History,
		perfMon:      opts.PerfMon,
		queryTimeout: timeout,
		startTime:    time.Now(),
		logger:       logger,
	}
}
