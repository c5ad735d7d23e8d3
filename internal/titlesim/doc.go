// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

// Package titlesim normalizes book titles and scores how alike two
// normalized titles are.
//
// Score is a weighted blend of five measures:
//
//	0.35 * sequence ratio (Ratcliff/Obershelp)
//	0.30 * token overlap  |A ∩ B| / max(|A|, |B|)
//	0.15 * character-frequency cosine
//	0.15 * sequence ratio of the first two tokens
//	0.05 * length penalty 1 - |l1-l2| / (max+1)
//
// The package has no state and is safe for concurrent use.
package titlesim
