// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package refgraph

import "github.com/nrchnnas/recsys/internal/metrics"

// Closure returns the smallest superset of seeds closed under the graph's
// edges. Traversal is breadth-first with a visited set, so cycles terminate.
func (g *Graph) Closure(seeds []string) Set {
	return NewSet(g.ClosureOrder(seeds)...)
}

// ClosureOrder returns the closure members in visit order.
func (g *Graph) ClosureOrder(seeds []string) []string {
	visited := make(Set, len(seeds))
	order := make([]string, 0, len(seeds))
	queue := make([]string, 0, len(seeds))

	for _, s := range seeds {
		if visited.Contains(s) {
			continue
		}
		visited[s] = struct{}{}
		order = append(order, s)
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range g.adj[id] {
			if visited.Contains(next) {
				continue
			}
			visited[next] = struct{}{}
			order = append(order, next)
			queue = append(queue, next)
		}
	}

	metrics.RecordClosure(len(seeds), len(order))
	return order
}

// IsClosed reports whether every edge leaving a member of set lands inside
// set. When it does not, the first offending edge is returned.
func (g *Graph) IsClosed(set Set) (ok bool, from, to string) {
	for _, src := range g.order {
		if !set.Contains(src) {
			continue
		}
		for _, dst := range g.adj[src] {
			if !set.Contains(dst) {
				return false, src, dst
			}
		}
	}
	return true, "", ""
}
