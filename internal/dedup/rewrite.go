// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package dedup

import "github.com/nrchnnas/recsys/internal/catalog"

// RewriteReferences returns copies of items whose reference lists point at
// canonical ids. Each list is de-duplicated keeping the first occurrence.
// The input items are not modified. The second return value counts the
// references that were redirected.
func RewriteReferences(items []catalog.Item, mapping map[string]string) ([]catalog.Item, int) {
	out := make([]catalog.Item, len(items))
	redirected := 0
	for i := range items {
		out[i] = items[i].Clone()
		refs := items[i].References
		if len(refs) == 0 {
			continue
		}

		seen := make(map[string]struct{}, len(refs))
		rewritten := make([]string, 0, len(refs))
		for _, ref := range refs {
			target := ref
			if c, ok := mapping[ref]; ok {
				if c != ref {
					redirected++
				}
				target = c
			}
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			rewritten = append(rewritten, target)
		}
		out[i].References = rewritten
	}
	return out, redirected
}
