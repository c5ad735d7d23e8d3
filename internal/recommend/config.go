// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the contribution of each signal to the aggregate.
	// Weights are used as given; they are not normalized.
	Weights Weights `json:"weights" koanf:"weights"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// ContentReasonThreshold is the content score above which a result is
	// explained as "Similar description".
	// Default: 0.2.
	ContentReasonThreshold float64 `json:"content_reason_threshold" koanf:"content_reason_threshold"`

	// TextField selects the text fed to the content vector:
	// description, title or title_description.
	// Default: description.
	TextField string `json:"text_field" koanf:"text_field"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// Weights is the (reference, content, tag) weight triple.
type Weights struct {
	Reference float64 `json:"reference" koanf:"reference"`
	Content   float64 `json:"content" koanf:"content"`
	Tag       float64 `json:"tag" koanf:"tag"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the number of results when a request does not say.
	// Default: 10.
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k" koanf:"max_k"`

	// HistoryPerItemK is the per-source k used in history mode.
	// Default: 5.
	HistoryPerItemK int `json:"history_per_item_k" koanf:"history_per_item_k"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`
}

// DefaultWeights returns the (0.5, 0.3, 0.2) triple.
func DefaultWeights() Weights {
	return Weights{Reference: 0.5, Content: 0.3, Tag: 0.2}
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		Limits: LimitsConfig{
			DefaultK:        10,
			MaxK:            100,
			HistoryPerItemK: 5,
		},
		ContentReasonThreshold: 0.2,
		TextField:              "description",
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.HistoryPerItemK < 1 {
		return fmt.Errorf("limits.history_per_item_k must be positive, got %d", c.Limits.HistoryPerItemK)
	}

	if c.ContentReasonThreshold < 0 || c.ContentReasonThreshold > 1 {
		return fmt.Errorf("content_reason_threshold must be in [0, 1], got %f", c.ContentReasonThreshold)
	}

	switch c.TextField {
	case "", "description", "title", "title_description":
	default:
		return fmt.Errorf("text_field must be one of description, title, title_description, got %q", c.TextField)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Validate checks that every weight is finite and non-negative.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"weights.reference", w.Reference},
		{"weights.content", w.Content},
		{"weights.tag", w.Tag},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %f", f.name, f.value)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - nested structs contain only value types
	clone := *c
	return &clone
}

// ClampK resolves a requested k against the limits. Zero or negative
// means the default.
func (c *Config) ClampK(k int) int {
	if k <= 0 {
		return c.Limits.DefaultK
	}
	if k > c.Limits.MaxK {
		return c.Limits.MaxK
	}
	return k
}
