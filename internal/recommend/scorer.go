// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/refgraph"
)

// Scorer computes component and aggregate scores of a candidate against a
// source item. Deployments differ only in the weight triple; the text that
// feeds the content vectors is chosen when the vectors are built.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Weights returns the weight triple.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the component scores, the aggregate and the tags shared
// with the source. refs is the source's repaired reference set. A nil
// vector on either side yields a content score of 0.
func (s *Scorer) Score(source, candidate *catalog.Item, refs refgraph.Set, sourceVec, candidateVec embedding.Vector) (ComponentScores, float64, []string) {
	var scores ComponentScores

	if refs.Contains(candidate.ID) {
		scores.Reference = 1
	}

	if sourceVec != nil && candidateVec != nil {
		scores.Content = embedding.Cosine(sourceVec, candidateVec)
	}

	matched := sharedTags(source.Tags, candidate.Tags)
	if len(source.Tags) > 0 {
		scores.Tag = float64(len(matched)) / float64(len(source.Tags))
	}

	return scores, scores.Aggregate(s.weights), matched
}

// sharedTags returns the tags of source also present in candidate, in
// source order.
func sharedTags(source, candidate []string) []string {
	if len(source) == 0 || len(candidate) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(candidate))
	for _, t := range candidate {
		have[t] = struct{}{}
	}
	var out []string
	for _, t := range source {
		if _, ok := have[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
