// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package dedup

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/metrics"
	"github.com/nrchnnas/recsys/internal/titlesim"
)

// Options configures a deduplication run.
type Options struct {
	// Threshold is the minimum composite title score for a fuzzy join.
	Threshold float64

	// BlockKeyLength is the normalized-title prefix length used for blocking.
	BlockKeyLength int

	// Workers bounds how many blocks are clustered concurrently.
	Workers int

	// RequireAuthorOverlap additionally requires a shared author id for
	// fuzzy joins. Exact-title clusters are unaffected.
	RequireAuthorOverlap bool

	// LargeClusterWarn raises an IntegrityWarning for clusters with more
	// members than this. Zero disables the check.
	LargeClusterWarn int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:        0.8,
		BlockKeyLength:   1,
		Workers:          runtime.NumCPU(),
		LargeClusterWarn: 10,
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Threshold <= 0 || o.Threshold > 1 {
		return &catalog.ConfigurationError{Field: "dedup.threshold", Reason: fmt.Sprintf("must be in (0, 1], got %v", o.Threshold)}
	}
	if o.BlockKeyLength < 1 || o.BlockKeyLength > 2 {
		return &catalog.ConfigurationError{Field: "dedup.block_key_length", Reason: fmt.Sprintf("must be 1 or 2, got %d", o.BlockKeyLength)}
	}
	if o.Workers < 1 {
		return &catalog.ConfigurationError{Field: "dedup.workers", Reason: fmt.Sprintf("must be at least 1, got %d", o.Workers)}
	}
	if o.LargeClusterWarn < 0 {
		return &catalog.ConfigurationError{Field: "dedup.large_cluster_warn", Reason: fmt.Sprintf("must be non-negative, got %d", o.LargeClusterWarn)}
	}
	return nil
}

// Engine finds clusters of duplicate items.
type Engine struct {
	opts   Options
	logger zerolog.Logger
}

// NewEngine validates opts and returns an engine.
func NewEngine(opts Options, logger zerolog.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:   opts,
		logger: logger.With().Str("component", "dedup").Logger(),
	}, nil
}

// Options returns a copy of the engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// blockResult is the output slot of one block worker.
type blockResult struct {
	clusters    [][]int
	comparisons int
}

// Deduplicate clusters items whose normalized titles are identical or
// score at or above the threshold within a block. When popularityKnown is
// false the first-encountered member of each cluster becomes canonical.
// The result is identical for any worker count.
func (e *Engine) Deduplicate(ctx context.Context, items []catalog.Item, popularityKnown bool) (*Result, error) {
	start := time.Now()
	if !popularityKnown {
		e.logger.Warn().Msg("popularity unavailable, canonical items fall back to first encountered")
	}

	normalized := make([]string, len(items))
	for i := range items {
		normalized[i] = titlesim.Normalize(items[i].Title)
	}

	exact, assigned := exactClusters(normalized)

	remaining := make([]int, 0, len(items))
	for i := range items {
		if !assigned[i] {
			remaining = append(remaining, i)
		}
	}
	blocks := BuildBlocks(normalized, remaining, e.opts.BlockKeyLength)

	results := make([]blockResult, len(blocks))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.Workers)
	for bi := range blocks {
		eg.Go(func() error {
			res, err := e.clusterBlock(egctx, &blocks[bi], normalized, items)
			if err != nil {
				return err
			}
			results[bi] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("deduplicate: %w", err)
	}

	result := &Result{
		Mapping: make(map[string]string),
		Report:  catalog.NewReport(catalog.DefaultMaxSamples),
		items:   items,
	}
	result.Stats.Items = len(items)
	result.Stats.Blocks = len(blocks)

	for _, members := range exact {
		result.addCluster(items, members, true, popularityKnown)
		result.Stats.ExactClusters++
	}
	for _, res := range results {
		result.Stats.Comparisons += res.comparisons
		for _, members := range res.clusters {
			result.addCluster(items, members, false, popularityKnown)
			result.Stats.FuzzyClusters++
		}
	}

	for i := range result.Clusters {
		c := &result.Clusters[i]
		result.Stats.Removed += len(c.Members) - 1
		if e.opts.LargeClusterWarn > 0 && len(c.Members) > e.opts.LargeClusterWarn {
			result.Report.Add(catalog.IntegrityWarning, c.Canonical,
				fmt.Sprintf("duplicate cluster has %d members", len(c.Members)))
		}
	}
	result.Stats.Duration = time.Since(start)

	metrics.RecordDedup(result.Stats.Duration, result.Stats.ExactClusters, result.Stats.FuzzyClusters, result.Stats.Removed)
	e.logger.Info().
		Int("items", result.Stats.Items).
		Int("exact_clusters", result.Stats.ExactClusters).
		Int("fuzzy_clusters", result.Stats.FuzzyClusters).
		Int("removed", result.Stats.Removed).
		Int("blocks", result.Stats.Blocks).
		Int("comparisons", result.Stats.Comparisons).
		Dur("duration", result.Stats.Duration).
		Msg("deduplication complete")

	return result, nil
}

// exactClusters groups positions by identical non-empty normalized title.
// Groups are ordered by their first member.
func exactClusters(normalized []string) ([][]int, []bool) {
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, key := range normalized {
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	assigned := make([]bool, len(normalized))
	var clusters [][]int
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		for _, pos := range members {
			assigned[pos] = true
		}
		clusters = append(clusters, members)
	}
	return clusters, assigned
}

// clusterBlock runs greedy clustering inside one block. Each item joins the
// first open cluster whose representative (first member) it matches, or
// opens a new cluster. Matching is not transitive.
func (e *Engine) clusterBlock(ctx context.Context, block *Block, normalized []string, items []catalog.Item) (blockResult, error) {
	var res blockResult
	var clusters [][]int
	for n, pos := range block.Members {
		if n%64 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		joined := false
		for ci := range clusters {
			rep := clusters[ci][0]
			res.comparisons++
			if titlesim.Score(normalized[rep], normalized[pos]) < e.opts.Threshold {
				continue
			}
			if e.opts.RequireAuthorOverlap && !catalog.SharesAuthor(items[rep].Authors, items[pos].Authors) {
				continue
			}
			clusters[ci] = append(clusters[ci], pos)
			joined = true
			break
		}
		if !joined {
			clusters = append(clusters, []int{pos})
		}
	}

	for _, c := range clusters {
		if len(c) > 1 {
			res.clusters = append(res.clusters, c)
		}
	}
	return res, nil
}
