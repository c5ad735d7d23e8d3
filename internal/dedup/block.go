// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package dedup

import "sort"

// Block is a group of candidate positions sharing a title prefix. Only
// members of the same block are ever compared.
type Block struct {
	Key     string
	Members []int
}

// BuildBlocks partitions the candidate positions by the first keyLength
// runes of their normalized title. Titles shorter than keyLength use the
// whole title as key. Empty titles are never blocked and blocks with a
// single member are dropped. Blocks are ordered by key; members keep the
// order of candidates.
func BuildBlocks(normalized []string, candidates []int, keyLength int) []Block {
	if keyLength < 1 {
		keyLength = 1
	}

	byKey := make(map[string][]int)
	for _, pos := range candidates {
		key := blockKey(normalized[pos], keyLength)
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], pos)
	}

	blocks := make([]Block, 0, len(byKey))
	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}
		blocks = append(blocks, Block{Key: key, Members: members})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Key < blocks[j].Key })
	return blocks
}

func blockKey(title string, keyLength int) string {
	n := 0
	for i := range title {
		if n == keyLength {
			return title[:i]
		}
		n++
	}
	return title
}
