// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"strconv"
	"strings"
)

// Item is one book in the catalog. Identifiers are opaque strings and
// unique within a catalog.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	References  []string `json:"references,omitempty"`
	Popularity  int64    `json:"popularity"`
	Quality     float64  `json:"quality"`
}

// Clone returns a deep copy of the item.
//
//nolint:gocritic // hugeParam: Item is passed by value for an immutable copy
func (it Item) Clone() Item {
	out := it
	out.Authors = cloneStrings(it.Authors)
	out.Tags = cloneStrings(it.Tags)
	out.References = cloneStrings(it.References)
	return out
}

// HasAuthor reports whether authorID is one of the item's authors.
func (it *Item) HasAuthor(authorID string) bool {
	for _, a := range it.Authors {
		if a == authorID {
			return true
		}
	}
	return false
}

// HasTag reports whether the item carries tag, compared case-insensitively.
func (it *Item) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SharesAuthor reports whether the two author lists intersect.
func SharesAuthor(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// CompareIDs orders identifiers. Two integer identifiers compare numerically,
// anything else compares lexically. It returns -1, 0 or +1.
func CompareIDs(a, b string) int {
	if a == b {
		return 0
	}
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
	}
	return strings.Compare(a, b)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
