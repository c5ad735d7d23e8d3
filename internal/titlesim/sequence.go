// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package titlesim

import (
	"github.com/pmezard/go-difflib/difflib"
)

// SequenceRatio returns the Ratcliff/Obershelp similarity 2*M/T of two
// strings, compared rune by rune. The block search is order dependent, so
// the ratio is computed in both directions and the larger value returned.
// Two empty strings score 1.
func SequenceRatio(a, b string) float64 {
	ra, rb := runeSeq(a), runeSeq(b)
	ratio := difflib.NewMatcher(ra, rb).Ratio()
	if rev := difflib.NewMatcher(rb, ra).Ratio(); rev > ratio {
		ratio = rev
	}
	return ratio
}

// runeSeq splits s into one element per rune.
func runeSeq(s string) []string {
	seq := make([]string, 0, len(s))
	for _, r := range s {
		seq = append(seq, string(r))
	}
	return seq
}
