// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"
)

// DefaultHashingDimensions is the bucket count of the hashing provider.
const DefaultHashingDimensions = 1024

var englishStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "of": {}, "for": {},
	"in": {}, "on": {}, "by": {}, "to": {}, "with": {}, "is": {}, "it": {}, "its": {},
	"as": {}, "at": {}, "be": {}, "was": {}, "are": {}, "were": {}, "this": {}, "that": {},
	"from": {}, "his": {}, "her": {}, "he": {}, "she": {}, "they": {}, "their": {}, "them": {},
	"who": {}, "which": {}, "what": {}, "when": {}, "where": {}, "has": {}, "have": {}, "had": {},
	"not": {}, "no": {}, "all": {}, "into": {}, "one": {}, "can": {}, "will": {}, "more": {},
	"than": {}, "so": {}, "if": {}, "about": {}, "up": {}, "out": {}, "there": {}, "been": {},
}

// HashingProvider is a local TF-IDF vectorizer over hashed token buckets.
// Term frequencies are sublinear (1 + ln tf); after Fit, buckets are
// weighted by smoothed inverse document frequency and buckets appearing in
// more than MaxDocFreq of documents are zeroed. Vectors are L2-normalized
// and non-negative.
type HashingProvider struct {
	dims       int
	maxDocFreq float64

	mu          sync.RWMutex
	idf         []float64
	fingerprint uint64
}

var _ Provider = (*HashingProvider)(nil)

// NewHashingProvider creates a provider with dims buckets. maxDocFreq in
// (0, 1] drops overly common buckets once fitted; 0 disables the cut.
func NewHashingProvider(dims int, maxDocFreq float64) (*HashingProvider, error) {
	if dims < 16 {
		return nil, fmt.Errorf("hashing dimensions must be at least 16, got %d", dims)
	}
	if maxDocFreq < 0 || maxDocFreq > 1 {
		return nil, fmt.Errorf("max document frequency must be in [0, 1], got %v", maxDocFreq)
	}
	return &HashingProvider{dims: dims, maxDocFreq: maxDocFreq}, nil
}

// Name identifies the provider, including the fitted IDF table.
func (h *HashingProvider) Name() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.idf == nil {
		return fmt.Sprintf("hashing-%d", h.dims)
	}
	return fmt.Sprintf("hashing-%d-idf-%016x", h.dims, h.fingerprint)
}

// Fit computes document frequencies over corpus. Blank documents are ignored.
func (h *HashingProvider) Fit(corpus []string) {
	df := make([]int, h.dims)
	docs := 0
	for _, text := range corpus {
		buckets := h.bucketCounts(text)
		if len(buckets) == 0 {
			continue
		}
		docs++
		for b := range buckets {
			df[b]++
		}
	}

	idf := make([]float64, h.dims)
	fp := fnv.New64a()
	for b, n := range df {
		if h.maxDocFreq > 0 && docs > 0 && float64(n)/float64(docs) > h.maxDocFreq {
			idf[b] = 0
		} else {
			idf[b] = math.Log(float64(1+docs)/float64(1+n)) + 1
		}
		fmt.Fprintf(fp, "%d:%d;", b, n)
	}

	h.mu.Lock()
	h.idf = idf
	h.fingerprint = fp.Sum64()
	h.mu.Unlock()
}

// Embed vectorizes texts. It never fails except on context cancellation.
func (h *HashingProvider) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	h.mu.RLock()
	idf := h.idf
	h.mu.RUnlock()

	out := make([]Vector, len(texts))
	for i, text := range texts {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		counts := h.bucketCounts(text)
		if len(counts) == 0 {
			continue
		}
		v := make(Vector, h.dims)
		nonZero := false
		for b, tf := range counts {
			w := 1 + math.Log(float64(tf))
			if idf != nil {
				w *= idf[b]
			}
			if w != 0 {
				nonZero = true
			}
			v[b] = float32(w)
		}
		if !nonZero {
			continue
		}
		normalizeL2(v)
		out[i] = v
	}
	return out, nil
}

func (h *HashingProvider) bucketCounts(text string) map[int]int {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[int]int, len(tokens))
	for _, tok := range tokens {
		f := fnv.New32a()
		_, _ = f.Write([]byte(tok))
		counts[int(f.Sum32()%uint32(h.dims))]++
	}
	return counts
}

// tokenize lowercases text and keeps alphanumeric tokens of two or more
// runes that are not stopwords.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := englishStopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
