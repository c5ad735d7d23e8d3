// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package titlesim

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Sub-score weights. They sum to 1.
const (
	WeightSequence   = 0.35
	WeightTokens     = 0.30
	WeightCharCosine = 0.15
	WeightLeading    = 0.15
	WeightLength     = 0.05
)

// Breakdown holds the five sub-scores behind a composite score.
type Breakdown struct {
	Sequence   float64 `json:"sequence"`
	Tokens     float64 `json:"tokens"`
	CharCosine float64 `json:"char_cosine"`
	Leading    float64 `json:"leading"`
	Length     float64 `json:"length"`
}

// Total returns the weighted sum clamped to [0, 1].
func (b Breakdown) Total() float64 {
	s := WeightSequence*b.Sequence +
		WeightTokens*b.Tokens +
		WeightCharCosine*b.CharCosine +
		WeightLeading*b.Leading +
		WeightLength*b.Length
	return clamp01(s)
}

// Score returns the composite similarity of two normalized titles.
// Identical titles score 1 and an empty title scores 0 against anything.
// The score is symmetric and bounded in [0, 1].
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return Explain(a, b).Total()
}

// Explain returns the sub-scores for two titles without the identity
// shortcuts applied by Score.
func Explain(a, b string) Breakdown {
	return Breakdown{
		Sequence:   SequenceRatio(a, b),
		Tokens:     tokenOverlap(a, b),
		CharCosine: charCosine(a, b),
		Leading:    SequenceRatio(leadingTokens(a, 2), leadingTokens(b, 2)),
		Length:     lengthPenalty(a, b),
	}
}

// tokenOverlap is |A ∩ B| / max(|A|, |B|) over whitespace tokens.
func tokenOverlap(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	denom := len(ta)
	if len(tb) > denom {
		denom = len(tb)
	}
	if denom == 0 {
		return 0
	}
	common := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			common++
		}
	}
	return float64(common) / float64(denom)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// charCosine treats each string as a bag of runes, L1-normalizes the counts
// and returns their cosine over the union alphabet. The alphabet is walked
// in sorted order so the float sum is identical for (a, b) and (b, a).
func charCosine(a, b string) float64 {
	fa, na := runeFrequencies(a)
	fb, nb := runeFrequencies(b)
	if na == 0 || nb == 0 {
		return 0
	}

	alphabet := make([]rune, 0, len(fa)+len(fb))
	for r := range fa {
		alphabet = append(alphabet, r)
	}
	for r := range fb {
		if _, ok := fa[r]; !ok {
			alphabet = append(alphabet, r)
		}
	}
	sort.Slice(alphabet, func(i, j int) bool { return alphabet[i] < alphabet[j] })

	var dot, normA, normB float64
	for _, r := range alphabet {
		x := float64(fa[r]) / float64(na)
		y := float64(fb[r]) / float64(nb)
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func runeFrequencies(s string) (map[rune]int, int) {
	freq := make(map[rune]int)
	n := 0
	for _, r := range s {
		freq[r]++
		n++
	}
	return freq, n
}

func leadingTokens(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// lengthPenalty is 1 - |l1-l2| / (max(l1,l2)+1) with lengths in runes.
func lengthPenalty(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(diff)/float64(longest+1)
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
