// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package refgraph

import (
	"sort"

	"github.com/nrchnnas/recsys/internal/catalog"
)

// Set is a set of item identifiers.
type Set map[string]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members ordered by catalog.CompareIDs.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return catalog.CompareIDs(out[i], out[j]) < 0 })
	return out
}

// Graph is the directed "explicitly similar" graph. Each source keeps its
// targets in first-seen order without duplicates.
type Graph struct {
	adj   map[string][]string
	edges map[string]Set
	order []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		adj:   make(map[string][]string),
		edges: make(map[string]Set),
	}
}

// Build creates the graph from each item's reference list.
//
//nolint:gocritic // rangeValCopy: items are read-only here
func Build(items []catalog.Item) *Graph {
	g := New()
	for _, item := range items {
		g.addNode(item.ID)
		for _, ref := range item.References {
			g.AddEdge(item.ID, ref)
		}
	}
	return g
}

func (g *Graph) addNode(id string) {
	if _, ok := g.edges[id]; ok {
		return
	}
	g.edges[id] = make(Set)
	g.order = append(g.order, id)
}

// AddEdge adds from -> to. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.addNode(from)
	if g.edges[from].Contains(to) {
		return
	}
	g.edges[from][to] = struct{}{}
	g.adj[from] = append(g.adj[from], to)
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	return g.edges[from].Contains(to)
}

// Neighbors returns a copy of the targets of id in insertion order.
func (g *Graph) Neighbors(id string) []string {
	targets := g.adj[id]
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// NeighborSet returns the targets of id as a set. The set must not be modified.
func (g *Graph) NeighborSet(id string) Set {
	return g.edges[id]
}

// Sources returns the source nodes in insertion order.
func (g *Graph) Sources() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// NodeCount returns the number of source nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.adj {
		n += len(targets)
	}
	return n
}

// ApplyTo returns copies of items whose reference lists are replaced by the
// graph's adjacency.
//
//nolint:gocritic // rangeValCopy: items are copied on purpose
func (g *Graph) ApplyTo(items []catalog.Item) []catalog.Item {
	out := make([]catalog.Item, len(items))
	for i, item := range items {
		out[i] = item.Clone()
		if targets := g.adj[item.ID]; len(targets) > 0 {
			out[i].References = g.Neighbors(item.ID)
		} else {
			out[i].References = nil
		}
	}
	return out
}
