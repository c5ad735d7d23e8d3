// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

// Package embedding turns item text into content vectors.
//
// A Provider maps a batch of texts to vectors. Empty text has no vector
// (nil), which scores 0 against anything. Three implementations exist:
//
//   - HashingProvider: local hashed TF-IDF, deterministic, no network
//   - OpenAIProvider: remote embeddings behind a rate limiter and circuit breaker
//   - CachedProvider: wraps another provider with a badger-backed vector cache
package embedding

import (
	"context"
	"math"
)

// Vector is a dense content embedding.
type Vector []float32

// Provider vectorizes text. Embed returns one entry per input; entries for
// blank texts are nil.
type Provider interface {
	// Name identifies the model and its parameters. Vectors from providers
	// with different names are not comparable.
	Name() string
	Embed(ctx context.Context, texts []string) ([]Vector, error)
}

// Fitter is implemented by providers whose weights depend on the corpus.
// Fit must be called with the full corpus before Embed.
type Fitter interface {
	Fit(corpus []string)
}

// FitIfNeeded fits p on corpus when p implements Fitter.
func FitIfNeeded(p Provider, corpus []string) bool {
	f, ok := p.(Fitter)
	if ok {
		f.Fit(corpus)
	}
	return ok
}

// Vectorize embeds a single text.
func Vectorize(ctx context.Context, p Provider, text string) (Vector, error) {
	out, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// Cosine returns the cosine similarity of a and b clamped to [0, 1]. It is
// 0 when either vector is empty or zero, or when the dimensions differ.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	default:
		return sim
	}
}

// normalizeL2 scales v to unit length in place.
func normalizeL2(v Vector) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
