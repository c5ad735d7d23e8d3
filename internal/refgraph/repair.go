// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package refgraph

import (
	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/metrics"
)

// RepairStats counts the edges removed by a repair.
type RepairStats struct {
	Dangling  int `json:"dangling"`
	SelfLoops int `json:"self_loops"`
}

// Removed returns the total number of edges removed.
func (s RepairStats) Removed() int {
	return s.Dangling + s.SelfLoops
}

// Repair removes every edge whose target is not in known and every self
// loop. It returns the number of edges removed; a second call returns 0.
func (g *Graph) Repair(known map[string]struct{}) int {
	return g.RepairWithReport(known, nil).Removed()
}

// RepairWithReport is Repair with per-edge IntegrityWarnings recorded in
// report when it is non-nil.
func (g *Graph) RepairWithReport(known map[string]struct{}, report *catalog.Report) RepairStats {
	var stats RepairStats
	for _, from := range g.order {
		targets := g.adj[from]
		if len(targets) == 0 {
			continue
		}
		kept := targets[:0]
		for _, to := range targets {
			switch {
			case to == from:
				stats.SelfLoops++
				delete(g.edges[from], to)
				if report != nil {
					report.Add(catalog.IntegrityWarning, from, "self reference removed")
				}
			case !containsKey(known, to):
				stats.Dangling++
				delete(g.edges[from], to)
				if report != nil {
					report.Add(catalog.IntegrityWarning, from, "dangling reference to "+to+" removed")
				}
			default:
				kept = append(kept, to)
			}
		}
		if len(kept) == 0 {
			delete(g.adj, from)
		} else {
			g.adj[from] = kept
		}
	}

	metrics.RecordGraphRepair(stats.Dangling, stats.SelfLoops)
	return stats
}

func containsKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}
