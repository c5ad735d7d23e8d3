// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"sort"
	"strings"

	"github.com/nrchnnas/recsys/internal/catalog"
)

// Ranker orders candidates against a snapshot. It holds no per-request
// state and is safe for concurrent use.
type Ranker struct {
	scorer           *Scorer
	contentThreshold float64
}

// NewRanker creates a ranker.
func NewRanker(scorer *Scorer, contentThreshold float64) *Ranker {
	return &Ranker{scorer: scorer, contentThreshold: contentThreshold}
}

// Rank scores every pool item against source and returns the top k.
// The source itself and near duplicates of it are excluded. Results are
// ordered by aggregate score, then popularity descending, then identifier.
// Candidates with an aggregate of 0 are still returned.
func (r *Ranker) Rank(snap *Snapshot, source *catalog.Item, pool []catalog.Item, k int) []ScoredCandidate {
	if k <= 0 || len(pool) == 0 {
		return []ScoredCandidate{}
	}

	refs := snap.Graph.NeighborSet(source.ID)
	sourceTitle := snap.Catalog.NormalizedTitle(source.ID)
	sourceVec := snap.Vector(source.ID)

	results := make([]ScoredCandidate, 0, len(pool))
	for i := range pool {
		cand := &pool[i]
		if cand.ID == source.ID {
			continue
		}
		if IsNearDuplicate(sourceTitle, snap.Catalog.NormalizedTitle(cand.ID), source.Authors, cand.Authors) {
			continue
		}

		scores, total, matched := r.scorer.Score(source, cand, refs, sourceVec, snap.Vector(cand.ID))
		results = append(results, ScoredCandidate{
			Item:        *cand,
			Scores:      scores,
			Score:       total,
			Frequency:   1,
			MatchedTags: matched,
			Reason:      explain(scores, matched, r.contentThreshold),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return byScore(&results[i], &results[j])
	})
	return truncate(results, k)
}

// RankHistory runs Rank once per history item with perItemK results each,
// unions the results and orders them by how many history items recommended
// them, then by aggregate score. Candidates already in the history are
// excluded. A candidate reached from several sources keeps its best score.
func (r *Ranker) RankHistory(snap *Snapshot, history []catalog.Item, pool []catalog.Item, perItemK, k int) []ScoredCandidate {
	if k <= 0 || len(history) == 0 {
		return []ScoredCandidate{}
	}

	inHistory := make(map[string]struct{}, len(history))
	for i := range history {
		inHistory[history[i].ID] = struct{}{}
	}

	merged := make(map[string]*ScoredCandidate)
	var order []string
	for i := range history {
		for _, sc := range r.Rank(snap, &history[i], pool, perItemK) {
			if _, skip := inHistory[sc.Item.ID]; skip {
				continue
			}
			existing, ok := merged[sc.Item.ID]
			if !ok {
				cand := sc
				merged[sc.Item.ID] = &cand
				order = append(order, sc.Item.ID)
				continue
			}
			existing.Frequency++
			if sc.Score > existing.Score {
				freq := existing.Frequency
				*existing = sc
				existing.Frequency = freq
			}
		}
	}

	results := make([]ScoredCandidate, 0, len(order))
	for _, id := range order {
		results = append(results, *merged[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return byScore(a, b)
	})
	return truncate(results, k)
}

// RankByAuthor returns books listing authorID, best rated first, then
// most popular.
func (r *Ranker) RankByAuthor(snap *Snapshot, authorID string, k int) []ScoredCandidate {
	authorID = strings.TrimSpace(authorID)
	if k <= 0 || authorID == "" {
		return []ScoredCandidate{}
	}

	items := snap.Catalog.Items()
	var results []ScoredCandidate
	for i := range items {
		if !items[i].HasAuthor(authorID) {
			continue
		}
		results = append(results, ScoredCandidate{
			Item:      items[i],
			Score:     items[i].Quality,
			Frequency: 1,
			Reason:    reasonAuthor,
		})
	}
	sortByQuality(results)
	return truncate(results, k)
}

// RankByTag returns books carrying tag whose average rating is at least
// minQuality, best rated first, then most popular.
func (r *Ranker) RankByTag(snap *Snapshot, tag string, minQuality float64, k int) []ScoredCandidate {
	tag = strings.TrimSpace(tag)
	if k <= 0 || tag == "" {
		return []ScoredCandidate{}
	}

	items := snap.Catalog.Items()
	var results []ScoredCandidate
	for i := range items {
		if !items[i].HasTag(tag) || items[i].Quality < minQuality {
			continue
		}
		results = append(results, ScoredCandidate{
			Item:        items[i],
			Score:       items[i].Quality,
			Frequency:   1,
			MatchedTags: []string{strings.ToLower(tag)},
			Reason:      "Matching tags: " + strings.ToLower(tag),
		})
	}
	sortByQuality(results)
	return truncate(results, k)
}

// byScore orders by aggregate descending, popularity descending, then
// identifier ascending.
func byScore(a, b *ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Item.Popularity != b.Item.Popularity {
		return a.Item.Popularity > b.Item.Popularity
	}
	return catalog.CompareIDs(a.Item.ID, b.Item.ID) < 0
}

func sortByQuality(results []ScoredCandidate) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i].Item, &results[j].Item
		if a.Quality != b.Quality {
			return a.Quality > b.Quality
		}
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return catalog.CompareIDs(a.ID, b.ID) < 0
	})
}

func truncate(results []ScoredCandidate, k int) []ScoredCandidate {
	if results == nil {
		return []ScoredCandidate{}
	}
	if len(results) > k {
		results = results[:k]
	}
	return results
}
