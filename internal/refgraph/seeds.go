// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package refgraph

import (
	"fmt"
	"sort"

	"github.com/nrchnnas/recsys/internal/catalog"
)

// SeedMode selects how the initial item set for a closure is chosen.
type SeedMode string

// Seed modes.
const (
	SeedAll           SeedMode = "all"
	SeedTopPopularity SeedMode = "top_popularity"
	SeedFirstByID     SeedMode = "first_by_id"
)

// SeedPolicy is an explicit, order-independent seed selection.
type SeedPolicy struct {
	Mode SeedMode
	N    int
}

// Validate checks the policy.
func (p SeedPolicy) Validate() error {
	switch p.Mode {
	case SeedAll:
		return nil
	case SeedTopPopularity, SeedFirstByID:
		if p.N < 1 {
			return &catalog.ConfigurationError{Field: "graph.seed_count", Reason: fmt.Sprintf("must be at least 1 for mode %s, got %d", p.Mode, p.N)}
		}
		return nil
	default:
		return &catalog.ConfigurationError{Field: "graph.seed_mode", Reason: fmt.Sprintf("unknown mode %q", p.Mode)}
	}
}

// SelectSeeds returns the seed identifiers. The result does not depend on
// the order of items.
func SelectSeeds(items []catalog.Item, policy SeedPolicy) []string {
	ranked := make([]*catalog.Item, len(items))
	for i := range items {
		ranked[i] = &items[i]
	}

	switch policy.Mode {
	case SeedTopPopularity:
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Popularity != ranked[j].Popularity {
				return ranked[i].Popularity > ranked[j].Popularity
			}
			return catalog.CompareIDs(ranked[i].ID, ranked[j].ID) < 0
		})
	default:
		sort.Slice(ranked, func(i, j int) bool {
			return catalog.CompareIDs(ranked[i].ID, ranked[j].ID) < 0
		})
	}

	n := len(ranked)
	if policy.Mode != SeedAll && policy.N < n {
		n = policy.N
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = ranked[i].ID
	}
	return ids
}

// Restrict keeps the items whose id is in keep, preserving order.
//
//nolint:gocritic // rangeValCopy: items are copied into the result
func Restrict(items []catalog.Item, keep Set) []catalog.Item {
	out := make([]catalog.Item, 0, len(keep))
	for _, item := range items {
		if keep.Contains(item.ID) {
			out = append(out, item)
		}
	}
	return out
}
