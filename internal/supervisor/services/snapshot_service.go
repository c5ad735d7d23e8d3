// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

// Package services provides suture service wrappers for the long-running
// parts of the server.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nrchnnas/recsys/internal/pipeline"
	"github.com/nrchnnas/recsys/internal/recommend"
)

// SnapshotBuilder is the part of the build pipeline the service drives.
type SnapshotBuilder interface {
	Build(ctx context.Context) (*recommend.Snapshot, error)
	Restore(ctx context.Context) (bool, error)
	IsRunning() bool
	LastStatus() *pipeline.Status
}

// SnapshotServiceConfig holds configuration for the snapshot service.
type SnapshotServiceConfig struct {
	// RebuildInterval schedules periodic rebuilds. Zero disables them.
	RebuildInterval time.Duration

	// BuildTimeout bounds a single build.
	// Default: 30m
	BuildTimeout time.Duration
}

// SnapshotService owns the snapshot lifecycle. On start it restores the
// latest persisted snapshot, building a fresh one when none exists, then
// rebuilds on schedule and on request. Builds never overlap.
type SnapshotService struct {
	builder SnapshotBuilder
	config  SnapshotServiceConfig
	trigger chan struct{}
	logger  zerolog.Logger
	name    string
}

// NewSnapshotService creates a new snapshot service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSnapshotService(builder SnapshotBuilder, cfg SnapshotServiceConfig, logger zerolog.Logger) *SnapshotService {
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 30 * time.Minute
	}
	return &SnapshotService{
		builder: builder,
		config:  cfg,
		trigger: make(chan struct{}, 1),
		logger:  logger.With().Str("service", "snapshot").Logger(),
		name:    "snapshot-service",
	}
}

// Serve implements suture.Service.
func (s *SnapshotService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("rebuild_interval", s.config.RebuildInterval).
		Msg("snapshot service starting")

	restored, err := s.builder.Restore(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("snapshot restore failed, building from source")
	}
	if !restored {
		s.build(ctx, "startup")
	}

	var tick <-chan time.Time
	if s.config.RebuildInterval > 0 {
		ticker := time.NewTicker(s.config.RebuildInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("snapshot service shutting down")
			return ctx.Err()
		case <-tick:
			s.build(ctx, "schedule")
		case <-s.trigger:
			s.build(ctx, "request")
		}
	}
}

// build runs one build. Failures are logged and the previous snapshot keeps
// serving, so the loop itself never fails.
func (s *SnapshotService) build(ctx context.Context, reason string) {
	buildCtx, cancel := context.WithTimeout(ctx, s.config.BuildTimeout)
	defer cancel()

	s.logger.Debug().Str("reason", reason).Msg("snapshot build triggered")
	if _, err := s.builder.Build(buildCtx); err != nil {
		if errors.Is(err, pipeline.ErrBuildInProgress) || ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Str("reason", reason).Msg("snapshot build failed, keeping previous snapshot")
	}
}

// RequestRebuild queues a rebuild. It returns pipeline.ErrBuildInProgress
// when a build is running or already queued.
func (s *SnapshotService) RequestRebuild() error {
	if s.builder.IsRunning() {
		return pipeline.ErrBuildInProgress
	}
	select {
	case s.trigger <- struct{}{}:
		return nil
	default:
		return pipeline.ErrBuildInProgress
	}
}

// LastStatus returns the most recent build status.
func (s *SnapshotService) LastStatus() *pipeline.Status {
	return s.builder.LastStatus()
}

// String returns the service name for logging.
func (s *SnapshotService) String() string {
	return s.name
}
