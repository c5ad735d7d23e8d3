// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

// Package recommend scores and ranks catalog items against a source item
// or a reading history.
//
// # Signals
//
// Each candidate receives three component scores against the source:
//
//   - Reference: 1 when the candidate is in the source's repaired
//     explicit-reference list, else 0
//   - Content: cosine similarity of the two content vectors, 0 when either
//     vector is undefined
//   - Tag: shared tags divided by the number of source tags
//
// The aggregate is the weighted sum with default weights (0.5, 0.3, 0.2).
//
// # Ranking
//
// Rank drops the source and its near duplicates (equal normalized titles,
// or contained titles with a shared author), scores the rest and sorts by
// aggregate, popularity and identifier. History queries run one ranking
// per history item and order the union by frequency first.
//
// # Serving
//
// Engine serves queries from an immutable Snapshot. Rebuilds publish a new
// snapshot atomically and clear the response cache:
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.Publish(snapshot)
//	resp, err := engine.Similar(ctx, "Dune", 10)
package recommend
