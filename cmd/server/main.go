// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nrchnnas/recsys/internal/api"
	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/config"
	"github.com/nrchnnas/recsys/internal/database"
	"github.com/nrchnnas/recsys/internal/dedup"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/logging"
	"github.com/nrchnnas/recsys/internal/middleware"
	"github.com/nrchnnas/recsys/internal/pipeline"
	"github.com/nrchnnas/recsys/internal/recommend"
	"github.com/nrchnnas/recsys/internal/supervisor"
	"github.com/nrchnnas/recsys/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.LoggingOptions())

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("catalog", cfg.Catalog.Path).
		Str("embedding_provider", cfg.Embedding.Provider).
		Msg("Starting recsys with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === STORAGE ===

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer closeResource(db, "database")

	source, err := newCatalogSource(&cfg.Catalog, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure catalog source")
	}

	// === BUILD PIPELINE ===

	provider, vectorCache, err := newProvider(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize embedding provider")
	}
	if vectorCache != nil {
		defer closeResource(vectorCache, "embedding cache")
	}

	var deduper *dedup.Engine
	if cfg.Dedup.Enabled {
		deduper, err = dedup.NewEngine(cfg.Dedup.Options(), logging.WithComponent("dedup"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize dedup engine")
		}
	} else {
		logging.Info().Msg("Duplicate detection disabled (DEDUP_ENABLED=false)")
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	builder, err := pipeline.NewBuilder(source, pipeline.Options{
		Schema:    cfg.Catalog.Columns,
		Load:      cfg.Catalog.LoadOptions(),
		Seeds:     cfg.Graph.SeedPolicy(),
		TextField: cfg.Recommend.TextField,
		BatchSize: cfg.Embedding.BatchSize,
		Workers:   cfg.Embedding.Workers,
	}, deduper, provider, db, engine, logging.WithComponent("pipeline"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize build pipeline")
	}

	snapshots := services.NewSnapshotService(builder, services.SnapshotServiceConfig{
		RebuildInterval: cfg.Catalog.RebuildInterval,
	}, logging.WithComponent("supervisor"))

	// === HTTP API ===

	perfMon := middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowRequestThreshold, logging.WithComponent("http"))
	handler := api.NewHandler(engine, api.HandlerOptions{
		Builds:       snapshots,
		History:      db,
		PerfMon:      perfMon,
		QueryTimeout: cfg.Server.Timeout,
	}, logging.WithComponent("api"))
	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddBuildService(snapshots)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("supervisor")))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newCatalogSource returns the configured raw catalog reader.
func newCatalogSource(cfg *config.CatalogConfig, db *database.DB) (catalog.Source, error) {
	switch cfg.Source {
	case "csv":
		return database.NewCSVSource(db, cfg.Path), nil
	case "jsonl":
		return &catalog.JSONLSource{Path: cfg.Path}, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// newProvider returns the configured embedding provider, nil for "none".
// Remote vectors are cached in badger when the cache store is enabled; the
// local hashing provider refits on every build, so its vectors are not
// cached.
func newProvider(cfg *config.Config) (embedding.Provider, *embedding.BadgerCache, error) {
	switch cfg.Embedding.Provider {
	case "none":
		logging.Info().Msg("Content vectors disabled (EMBEDDING_PROVIDER=none)")
		return nil, nil, nil
	case "hashing":
		p, err := embedding.NewHashingProvider(cfg.Embedding.Dimensions, cfg.Embedding.MaxDocFreq)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	case "openai":
		p, err := embedding.NewOpenAIProvider(cfg.Embedding.ProviderConfig(), logging.WithComponent("embedding"))
		if err != nil {
			return nil, nil, err
		}
		if !cfg.CacheStore.Enabled {
			return p, nil, nil
		}
		cache, err := embedding.OpenBadgerCache(cfg.CacheStore.Path, cfg.CacheStore.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open embedding cache: %w", err)
		}
		return embedding.NewCachedProvider(p, cache, logging.WithComponent("embedding")), cache, nil
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func closeResource(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Str("resource", name).Msg("Failed to close")
	}
}
