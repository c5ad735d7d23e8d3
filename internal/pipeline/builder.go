// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/database"
	"github.com/nrchnnas/recsys/internal/dedup"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/logging"
	"github.com/nrchnnas/recsys/internal/metrics"
	"github.com/nrchnnas/recsys/internal/recommend"
	"github.com/nrchnnas/recsys/internal/refgraph"
)

// ErrBuildInProgress is returned when Build is called while another build runs.
var ErrBuildInProgress = errors.New("build already in progress")

// SnapshotStore persists snapshots across restarts.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *recommend.Snapshot) error
	LoadLatestSnapshot(ctx context.Context) (*recommend.Snapshot, error)
}

// Publisher makes a snapshot the serving state.
type Publisher interface {
	Publish(snap *recommend.Snapshot)
}

// Options controls how a build shapes the catalog.
type Options struct {
	Schema    catalog.Schema
	Load      catalog.LoadOptions
	Seeds     refgraph.SeedPolicy
	TextField string
	BatchSize int
	Workers   int
}

// Status describes the most recent build attempt.
type Status struct {
	BuildID    string               `json:"build_id"`
	Running    bool                 `json:"running"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at,omitempty"`
	Version    string               `json:"version,omitempty"`
	Error      string               `json:"error,omitempty"`
	Stats      recommend.BuildStats `json:"stats"`
}

// Builder runs the catalog build pipeline.
type Builder struct {
	source    catalog.Source
	opts      Options
	deduper   *dedup.Engine
	provider  embedding.Provider
	extract   catalog.TextExtractor
	store     SnapshotStore
	publisher Publisher
	logger    zerolog.Logger

	// State
	mu      sync.RWMutex
	running bool
	status  *Status
}

// NewBuilder creates a builder. A nil deduper skips deduplication, a nil
// provider builds snapshots without content vectors and a nil store skips
// persistence.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBuilder(source catalog.Source, opts Options, deduper *dedup.Engine, provider embedding.Provider,
	store SnapshotStore, publisher Publisher, logger zerolog.Logger) (*Builder, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if err := opts.Seeds.Validate(); err != nil {
		return nil, err
	}
	extract, err := catalog.ExtractorFor(opts.TextField)
	if err != nil {
		return nil, err
	}
	return &Builder{
		source:    source,
		opts:      opts,
		deduper:   deduper,
		provider:  provider,
		extract:   extract,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Build runs the pipeline and publishes the result. On error nothing is
// published and the previous snapshot keeps serving.
func (b *Builder) Build(ctx context.Context) (snap *recommend.Snapshot, err error) {
	buildID := logging.GenerateBuildID()

	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil, ErrBuildInProgress
	}
	b.running = true
	b.status = &Status{BuildID: buildID, Running: true, StartedAt: time.Now().UTC()}
	b.mu.Unlock()

	ctx = logging.ContextWithBuildID(ctx, buildID)
	ctx = logging.ContextWithLogger(ctx, b.logger)
	logger := logging.Ctx(ctx)

	start := time.Now()
	defer func() {
		metrics.RecordSnapshotBuild(time.Since(start), err)

		b.mu.Lock()
		b.running = false
		b.status.Running = false
		b.status.FinishedAt = time.Now().UTC()
		if err != nil {
			b.status.Error = err.Error()
		} else {
			b.status.Version = snap.Version.String()
			b.status.Stats = snap.Stats
		}
		b.mu.Unlock()
	}()

	logger.Info().Msg("Starting catalog build")

	snap, err = b.assemble(ctx, logger)
	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Catalog build failed")
		return nil, err
	}
	snap.Stats.Duration = time.Since(start)

	if b.store != nil {
		if saveErr := b.store.SaveSnapshot(ctx, snap); saveErr != nil {
			// The snapshot still serves; it just will not survive a restart.
			logger.Error().Err(saveErr).Str("version", snap.Version.String()).Msg("Failed to persist snapshot")
		}
	}

	b.publisher.Publish(snap)
	metrics.RecordSnapshotPublished(snap.Catalog.Len(), snap.Graph.EdgeCount(), snap.Report.Counts, snap.BuiltAt)

	logger.Info().
		Str("version", snap.Version.String()).
		Int("raw_items", snap.Stats.RawItems).
		Int("items", snap.Stats.Items).
		Int("duplicates_removed", snap.Stats.DuplicatesFound).
		Int("edges", snap.Stats.Edges).
		Int("vectors", snap.Stats.Vectors).
		Int("warnings", snap.Report.Total).
		Dur("duration", snap.Stats.Duration).
		Msg("Catalog build completed")

	return snap, nil
}

// assemble runs every stage up to, but not including, persistence.
func (b *Builder) assemble(ctx context.Context, logger *zerolog.Logger) (*recommend.Snapshot, error) {
	report := catalog.NewReport(catalog.DefaultMaxSamples)
	var stats recommend.BuildStats

	table, err := b.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	stats.RawItems = len(table.Rows)

	cat, err := catalog.FromRecords(table, b.opts.Schema, b.opts.Load, report)
	if err != nil {
		return nil, err
	}
	items := cat.Items()
	popularityKnown := cat.PopularityKnown()
	logger.Debug().Int("rows", stats.RawItems).Int("items", len(items)).Msg("Catalog records parsed")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if b.deduper != nil {
		result, err := b.deduper.Deduplicate(ctx, items, popularityKnown)
		if err != nil {
			return nil, fmt.Errorf("deduplicate: %w", err)
		}
		report.Merge(result.Report)
		items, stats.EdgesRedirected = dedup.RewriteReferences(result.Survivors(), result.Mapping)
		stats.DuplicatesFound = result.Stats.Removed
		stats.ExactClusters = result.Stats.ExactClusters
		stats.FuzzyClusters = result.Stats.FuzzyClusters
	}

	graph := refgraph.Build(items)
	repair := graph.RepairWithReport(catalog.New(items, popularityKnown).IDs(), report)
	stats.DanglingEdges = repair.Dangling
	stats.SelfLoops = repair.SelfLoops
	items = graph.ApplyTo(items)

	if b.opts.Seeds.Mode != refgraph.SeedAll {
		seeds := refgraph.SelectSeeds(items, b.opts.Seeds)
		keep := graph.Closure(seeds)
		items = refgraph.Restrict(items, keep)
		graph = refgraph.Build(items)
		logger.Info().
			Str("seed_mode", string(b.opts.Seeds.Mode)).
			Int("seeds", len(seeds)).
			Int("closure", len(keep)).
			Msg("Catalog restricted to seed closure")
	}

	final := catalog.New(items, popularityKnown)
	stats.Items = final.Len()
	stats.Edges = graph.EdgeCount()

	vectors, providerName, err := b.embed(ctx, final.Items())
	if err != nil {
		return nil, err
	}
	stats.Vectors = len(vectors)

	report.Log(logger, "Catalog build produced warnings")

	snap := recommend.NewSnapshot(final, graph, vectors)
	snap.Provider = providerName
	snap.Report = report.Summary()
	snap.Stats = stats
	return snap, nil
}

// embed computes one vector per item with non-empty text. Items without
// text get no vector, so their content similarity is zero.
func (b *Builder) embed(ctx context.Context, items []catalog.Item) (map[string]embedding.Vector, string, error) {
	if b.provider == nil {
		return nil, "none", nil
	}

	ids := make([]string, 0, len(items))
	texts := make([]string, 0, len(items))
	for i := range items {
		text := b.extract(&items[i])
		if text == "" {
			continue
		}
		ids = append(ids, items[i].ID)
		texts = append(texts, text)
	}

	embedding.FitIfNeeded(b.provider, texts)

	vecs, err := embedding.EmbedAll(ctx, b.provider, texts, b.opts.BatchSize, b.opts.Workers)
	if err != nil {
		return nil, "", fmt.Errorf("embed catalog: %w", err)
	}

	vectors := make(map[string]embedding.Vector, len(ids))
	for i, id := range ids {
		if len(vecs[i]) > 0 {
			vectors[id] = vecs[i]
		}
	}
	return vectors, b.provider.Name(), nil
}

// Restore publishes the latest persisted snapshot without rebuilding. It
// returns false when no store is configured or nothing has been saved yet.
func (b *Builder) Restore(ctx context.Context) (bool, error) {
	if b.store == nil {
		return false, nil
	}

	snap, err := b.store.LoadLatestSnapshot(ctx)
	if errors.Is(err, database.ErrNoSnapshot) {
		b.logger.Info().Msg("No persisted snapshot to restore")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore snapshot: %w", err)
	}

	b.publisher.Publish(snap)
	metrics.RecordSnapshotPublished(snap.Catalog.Len(), snap.Graph.EdgeCount(), snap.Report.Counts, snap.BuiltAt)

	b.logger.Info().
		Str("version", snap.Version.String()).
		Time("built_at", snap.BuiltAt).
		Int("items", snap.Catalog.Len()).
		Msg("Restored persisted snapshot")
	return true, nil
}

// IsRunning returns whether a build is currently in progress.
func (b *Builder) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// LastStatus returns a copy of the most recent build status, nil before the
// first build.
func (b *Builder) LastStatus() *Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.status == nil {
		return nil
	}
	status := *b.status
	return &status
}
