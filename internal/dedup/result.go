// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package dedup

import (
	"time"

	"github.com/nrchnnas/recsys/internal/catalog"
)

// Cluster is a set of items judged to be the same book. Members are in
// input order and include the canonical item.
type Cluster struct {
	Canonical string   `json:"canonical"`
	Members   []string `json:"members"`
	Exact     bool     `json:"exact"`
}

// Stats summarizes a deduplication run.
type Stats struct {
	Items         int           `json:"items"`
	ExactClusters int           `json:"exact_clusters"`
	FuzzyClusters int           `json:"fuzzy_clusters"`
	Removed       int           `json:"removed"`
	Blocks        int           `json:"blocks"`
	Comparisons   int           `json:"comparisons"`
	Duration      time.Duration `json:"duration"`
}

// Result is the outcome of Engine.Deduplicate.
type Result struct {
	Clusters []Cluster
	// Mapping sends every cluster member to its canonical id. Canonical ids
	// map to themselves. Items outside any cluster are absent.
	Mapping map[string]string
	Stats   Stats
	Report  *catalog.Report

	items []catalog.Item
}

// CanonicalOf returns the canonical id for id, or id itself when it is not
// part of a cluster.
func (r *Result) CanonicalOf(id string) string {
	if c, ok := r.Mapping[id]; ok {
		return c
	}
	return id
}

// Survivors returns the items left after removing every non-canonical
// cluster member, in input order.
func (r *Result) Survivors() []catalog.Item {
	out := make([]catalog.Item, 0, len(r.items)-r.Stats.Removed)
	for i := range r.items {
		id := r.items[i].ID
		if c, ok := r.Mapping[id]; ok && c != id {
			continue
		}
		out = append(out, r.items[i])
	}
	return out
}

func (r *Result) addCluster(items []catalog.Item, members []int, exact, popularityKnown bool) {
	canonical := members[0]
	if popularityKnown {
		for _, pos := range members[1:] {
			if preferCanonical(&items[pos], &items[canonical]) {
				canonical = pos
			}
		}
	}

	c := Cluster{
		Canonical: items[canonical].ID,
		Members:   make([]string, len(members)),
		Exact:     exact,
	}
	for i, pos := range members {
		c.Members[i] = items[pos].ID
		r.Mapping[items[pos].ID] = c.Canonical
	}
	r.Clusters = append(r.Clusters, c)
}

// preferCanonical orders by popularity descending, then identifier ascending.
func preferCanonical(a, b *catalog.Item) bool {
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	return catalog.CompareIDs(a.ID, b.ID) < 0
}
