// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"strings"

	"github.com/nrchnnas/recsys/internal/titlesim"
)

// Catalog is an ordered, immutable set of items indexed by identifier.
// Normalized titles are computed once at construction.
type Catalog struct {
	items           []Item
	index           map[string]int
	normalized      []string
	lowerTitles     []string
	popularityKnown bool
}

// New builds a catalog from items. Items with a duplicate identifier after
// the first occurrence are dropped; callers loading raw rows should use
// FromRecords, which reports them.
func New(items []Item, popularityKnown bool) *Catalog {
	c := &Catalog{
		items:           make([]Item, 0, len(items)),
		index:           make(map[string]int, len(items)),
		normalized:      make([]string, 0, len(items)),
		lowerTitles:     make([]string, 0, len(items)),
		popularityKnown: popularityKnown,
	}
	for i := range items {
		if _, dup := c.index[items[i].ID]; dup {
			continue
		}
		c.index[items[i].ID] = len(c.items)
		c.items = append(c.items, items[i])
		c.normalized = append(c.normalized, titlesim.Normalize(items[i].Title))
		c.lowerTitles = append(c.lowerTitles, strings.ToLower(items[i].Title))
	}
	return c
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns the items in catalog order. The slice must not be modified.
func (c *Catalog) Items() []Item {
	return c.items
}

// PopularityKnown reports whether the source carried a popularity column.
func (c *Catalog) PopularityKnown() bool {
	return c.popularityKnown
}

// Get returns the item with the given identifier.
func (c *Catalog) Get(id string) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IDs returns the identifier set, used as the known-id set for graph repair.
func (c *Catalog) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(c.items))
	for i := range c.items {
		ids[c.items[i].ID] = struct{}{}
	}
	return ids
}

// NormalizedTitle returns the cached normalized title of id.
func (c *Catalog) NormalizedTitle(id string) string {
	i, ok := c.index[id]
	if !ok {
		return ""
	}
	return c.normalized[i]
}

// FindItem resolves a title or identifier. An exact identifier match wins;
// otherwise a case-insensitive substring match on the title is used and
// the most popular match (ties by identifier) is returned.
func (c *Catalog) FindItem(query string) (Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Item{}, ErrNotFound
	}
	if item, ok := c.Get(query); ok {
		return item, nil
	}

	needle := strings.ToLower(query)
	best := -1
	for i := range c.items {
		if !strings.Contains(c.lowerTitles[i], needle) {
			continue
		}
		if best < 0 || morePopular(&c.items[i], &c.items[best]) {
			best = i
		}
	}
	if best < 0 {
		return Item{}, ErrNotFound
	}
	return c.items[best], nil
}

// morePopular orders by popularity descending, then identifier ascending.
func morePopular(a, b *Item) bool {
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	return CompareIDs(a.ID, b.ID) < 0
}
