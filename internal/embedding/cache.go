// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/nrchnnas/recsys/internal/metrics"
)

// Key prefix for vector entries in BadgerDB
const vectorKeyPrefix = "vec:"

// BadgerCache stores content vectors keyed by provider name and text hash.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadgerCache opens (or creates) a cache at path. An empty path opens
// an in-memory store.
func OpenBadgerCache(path string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger vector cache: %w", err)
	}
	return NewBadgerCache(db, ttl), nil
}

// NewBadgerCache wraps an already open database.
func NewBadgerCache(db *badger.DB, ttl time.Duration) *BadgerCache {
	return &BadgerCache{db: db, ttl: ttl}
}

// Close closes the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// Get returns the cached vectors for keys. Missing keys are absent from the map.
func (c *BadgerCache) Get(keys []string) (map[string]Vector, error) {
	found := make(map[string]Vector, len(keys))
	err := c.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get([]byte(vectorKeyPrefix + key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get vector: %w", err)
			}
			var v Vector
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return fmt.Errorf("decode vector: %w", err)
			}
			found[key] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Put stores vectors. Nil vectors are skipped.
func (c *BadgerCache) Put(entries map[string]Vector) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for key, v := range entries {
		if v == nil {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal vector: %w", err)
		}
		e := badger.NewEntry([]byte(vectorKeyPrefix+key), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		if err := wb.SetEntry(e); err != nil {
			return fmt.Errorf("set vector: %w", err)
		}
	}
	return wb.Flush()
}

// CachedProvider serves vectors from a BadgerCache and only forwards misses
// to the wrapped provider. Cache failures are logged and treated as misses.
type CachedProvider struct {
	inner  Provider
	cache  *BadgerCache
	logger zerolog.Logger
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps inner with cache.
func NewCachedProvider(inner Provider, cache *BadgerCache, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		logger: logger.With().Str("component", "embedding_cache").Logger(),
	}
}

// Name returns the wrapped provider's name.
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// Fit forwards to the wrapped provider when it is a Fitter. The fitted
// provider reports a new name, so stale cache entries are never served.
func (p *CachedProvider) Fit(corpus []string) {
	FitIfNeeded(p.inner, corpus)
}

// Embed returns cached vectors where available and embeds the rest.
func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	name := p.inner.Name()
	keys := make([]string, len(texts))
	for i, t := range texts {
		if t != "" {
			keys[i] = cacheKey(name, t)
		}
	}

	lookup := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			lookup = append(lookup, k)
		}
	}
	cached, err := p.cache.Get(lookup)
	if err != nil {
		p.logger.Warn().Err(err).Msg("vector cache read failed")
		cached = map[string]Vector{}
	}

	out := make([]Vector, len(texts))
	var missTexts []string
	var missPos []int
	for i, k := range keys {
		if k == "" {
			continue
		}
		if v, ok := cached[k]; ok {
			out[i] = v
			metrics.RecordEmbeddingCache(true)
			continue
		}
		metrics.RecordEmbeddingCache(false)
		missTexts = append(missTexts, texts[i])
		missPos = append(missPos, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := p.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	store := make(map[string]Vector, len(fresh))
	for j, pos := range missPos {
		out[pos] = fresh[j]
		store[keys[pos]] = fresh[j]
	}
	if err := p.cache.Put(store); err != nil {
		p.logger.Warn().Err(err).Msg("vector cache write failed")
	}
	return out, nil
}

func cacheKey(provider, text string) string {
	sum := sha256.Sum256([]byte(text))
	return provider + ":" + hex.EncodeToString(sum[:])
}
