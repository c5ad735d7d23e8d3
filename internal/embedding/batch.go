// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// EmbedAll splits texts into batches of batchSize and embeds up to workers
// batches concurrently. The result is positionally aligned with texts. The
// first failing batch cancels the rest.
func EmbedAll(ctx context.Context, p Provider, texts []string, batchSize, workers int) ([]Vector, error) {
	if batchSize <= 0 {
		batchSize = 256
	}
	if workers <= 0 {
		workers = 1
	}

	out := make([]Vector, len(texts))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		eg.Go(func() error {
			vectors, err := p.Embed(egctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
			}
			if len(vectors) != end-start {
				return fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(vectors))
			}
			copy(out[start:end], vectors)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
