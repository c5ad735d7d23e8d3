// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"time"

	"github.com/google/uuid"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/refgraph"
)

// Snapshot is an immutable, fully built serving state: the deduplicated
// catalog, its repaired reference graph and the content vectors keyed by
// item identifier. A snapshot is never modified after it is published.
type Snapshot struct {
	Version  uuid.UUID
	BuiltAt  time.Time
	Catalog  *catalog.Catalog
	Graph    *refgraph.Graph
	Vectors  map[string]embedding.Vector
	Provider string
	Report   catalog.Summary
	Stats    BuildStats
}

// BuildStats summarizes how a snapshot was produced.
type BuildStats struct {
	RawItems        int           `json:"raw_items"`
	Items           int           `json:"items"`
	DuplicatesFound int           `json:"duplicates_removed"`
	ExactClusters   int           `json:"exact_clusters"`
	FuzzyClusters   int           `json:"fuzzy_clusters"`
	EdgesRedirected int           `json:"edges_redirected"`
	DanglingEdges   int           `json:"dangling_edges"`
	SelfLoops       int           `json:"self_loops"`
	Edges           int           `json:"edges"`
	Vectors         int           `json:"vectors"`
	Duration        time.Duration `json:"duration"`
}

// NewSnapshot assembles a snapshot with a fresh version.
func NewSnapshot(cat *catalog.Catalog, graph *refgraph.Graph, vectors map[string]embedding.Vector) *Snapshot {
	if vectors == nil {
		vectors = map[string]embedding.Vector{}
	}
	return &Snapshot{
		Version: uuid.New(),
		BuiltAt: time.Now().UTC(),
		Catalog: cat,
		Graph:   graph,
		Vectors: vectors,
	}
}

// Vector returns the content vector of id, nil when undefined.
func (s *Snapshot) Vector(id string) embedding.Vector {
	return s.Vectors[id]
}
