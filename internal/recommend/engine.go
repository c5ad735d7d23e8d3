// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nrchnnas/recsys/internal/cache"
	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/metrics"
)

// ErrNotReady is returned by queries issued before any snapshot is published.
var ErrNotReady = errors.New("no snapshot published")

// Engine serves ranking queries from the current snapshot. Rebuilds
// publish a new snapshot with an atomic swap; every query reads the
// pointer once, so a request never observes two snapshots.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	ranker *Ranker

	current atomic.Pointer[Snapshot]

	// Response cache, keyed by snapshot version and query. Nil when disabled.
	cache *cache.LRU[*Response]
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
		ranker: NewRanker(NewScorer(cfg.Weights), cfg.ContentReasonThreshold),
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Publish makes snap the serving snapshot and drops cached responses.
func (e *Engine) Publish(snap *Snapshot) {
	if snap == nil {
		return
	}
	prev := e.current.Swap(snap)
	if e.cache != nil {
		e.cache.Clear()
	}

	event := e.logger.Info().
		Str("version", snap.Version.String()).
		Int("items", snap.Catalog.Len()).
		Int("edges", snap.Graph.EdgeCount()).
		Int("vectors", len(snap.Vectors))
	if prev != nil {
		event = event.Str("previous_version", prev.Version.String())
	}
	event.Msg("snapshot published")
}

// Snapshot returns the serving snapshot, nil before the first publish.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Ready reports whether a snapshot has been published.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// FindItem resolves an identifier or title against the serving snapshot.
func (e *Engine) FindItem(query string) (catalog.Item, error) {
	snap := e.current.Load()
	if snap == nil {
		return catalog.Item{}, ErrNotReady
	}
	return snap.Catalog.FindItem(query)
}

// Similar ranks the catalog against the item matching query.
func (e *Engine) Similar(ctx context.Context, query string, k int) (*Response, error) {
	k = e.config.ClampK(k)
	return e.serve(ctx, ModeSimilar, "similar|"+strings.TrimSpace(query)+"|"+strconv.Itoa(k),
		func(snap *Snapshot) ([]ScoredCandidate, []string, error) {
			source, err := snap.Catalog.FindItem(query)
			if err != nil {
				return nil, nil, fmt.Errorf("find %q: %w", query, err)
			}
			results := e.ranker.Rank(snap, &source, snap.Catalog.Items(), k)
			return results, []string{source.ID}, nil
		})
}

// ForHistory ranks the catalog against a reading history. Entries that
// resolve to no item are skipped; when none resolve, ErrNotFound is returned.
func (e *Engine) ForHistory(ctx context.Context, queries []string, k int) (*Response, error) {
	k = e.config.ClampK(k)
	key := "history|" + strings.Join(queries, "\x1f") + "|" + strconv.Itoa(k)
	return e.serve(ctx, ModeHistory, key, func(snap *Snapshot) ([]ScoredCandidate, []string, error) {
		seen := make(map[string]struct{}, len(queries))
		var history []catalog.Item
		var sources []string
		for _, q := range queries {
			item, err := snap.Catalog.FindItem(q)
			if err != nil {
				e.logger.Debug().Str("query", q).Msg("history entry not found")
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			history = append(history, item)
			sources = append(sources, item.ID)
		}
		if len(history) == 0 {
			return nil, nil, fmt.Errorf("resolve history: %w", catalog.ErrNotFound)
		}
		results := e.ranker.RankHistory(snap, history, snap.Catalog.Items(), e.config.Limits.HistoryPerItemK, k)
		return results, sources, nil
	})
}

// ByAuthor lists books by an author.
func (e *Engine) ByAuthor(ctx context.Context, authorID string, k int) (*Response, error) {
	k = e.config.ClampK(k)
	return e.serve(ctx, ModeAuthor, "author|"+authorID+"|"+strconv.Itoa(k),
		func(snap *Snapshot) ([]ScoredCandidate, []string, error) {
			return e.ranker.RankByAuthor(snap, authorID, k), nil, nil
		})
}

// ByTag lists books carrying tag with an average rating of at least minQuality.
func (e *Engine) ByTag(ctx context.Context, tag string, minQuality float64, k int) (*Response, error) {
	k = e.config.ClampK(k)
	key := "tag|" + strings.ToLower(tag) + "|" + strconv.FormatFloat(minQuality, 'f', -1, 64) + "|" + strconv.Itoa(k)
	return e.serve(ctx, ModeTag, key, func(snap *Snapshot) ([]ScoredCandidate, []string, error) {
		return e.ranker.RankByTag(snap, tag, minQuality, k), nil, nil
	})
}

// serve runs a query against the current snapshot with response caching
// and metrics.
func (e *Engine) serve(ctx context.Context, mode Mode, key string,
	run func(snap *Snapshot) ([]ScoredCandidate, []string, error)) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	cacheKey := snap.Version.String() + "|" + key
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			metrics.RecordRankCache(true)
			resp := copyResponse(cached)
			resp.Metadata.CacheHit = true
			resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
			resp.Metadata.Timestamp = time.Now().UTC()
			return resp, nil
		}
		metrics.RecordRankCache(false)
	}

	items, sources, err := run(snap)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	resp := &Response{
		Items: items,
		Metadata: ResponseMetadata{
			Mode:            mode,
			Sources:         sources,
			SnapshotVersion: snap.Version.String(),
			LatencyMS:       duration.Milliseconds(),
			Timestamp:       time.Now().UTC(),
		},
	}
	metrics.RecordRank(string(mode), duration, len(items))

	e.logger.Debug().
		Str("mode", string(mode)).
		Strs("sources", sources).
		Int("results", len(items)).
		Dur("latency", duration).
		Msg("ranking complete")

	if e.cache != nil {
		e.cache.Add(cacheKey, copyResponse(resp))
	}
	return resp, nil
}
