// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package config

import (
	"fmt"
	"strings"

	"github.com/nrchnnas/recsys/internal/logging"
	"github.com/nrchnnas/recsys/internal/validation"
)

// Validate validates all configuration sections. It runs before any catalog
// is read, so a bad value fails startup instead of a build.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateDedup(); err != nil {
		return err
	}
	if err := c.Graph.SeedPolicy().Validate(); err != nil {
		return err
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateCacheStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateSecurity()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case "csv", "jsonl":
	default:
		return fmt.Errorf("catalog.source must be csv or jsonl, got %q", c.Catalog.Source)
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Catalog.MinPopularity < 0 {
		return fmt.Errorf("catalog.min_popularity must be non-negative, got %d", c.Catalog.MinPopularity)
	}
	if c.Catalog.RebuildInterval < 0 {
		return fmt.Errorf("catalog.rebuild_interval must be non-negative, got %v", c.Catalog.RebuildInterval)
	}
	if err := validation.ValidateStruct(&c.Catalog.Columns); err != nil {
		return fmt.Errorf("catalog.columns: %w", err)
	}
	return nil
}

func (c *Config) validateDedup() error {
	if !c.Dedup.Enabled {
		return nil
	}
	if c.Dedup.Workers < 0 {
		return fmt.Errorf("dedup.workers must be non-negative, got %d", c.Dedup.Workers)
	}
	opts := c.Dedup.Options()
	return opts.Validate()
}

func (c *Config) validateEmbedding() error {
	e := &c.Embedding
	switch e.Provider {
	case "none":
		return nil
	case "hashing":
		if e.Dimensions < 1 {
			return fmt.Errorf("embedding.dimensions must be at least 1, got %d", e.Dimensions)
		}
		if e.MaxDocFreq <= 0 || e.MaxDocFreq > 1 {
			return fmt.Errorf("embedding.max_doc_freq must be in (0, 1], got %v", e.MaxDocFreq)
		}
	case "openai":
		if e.OpenAI.APIKey == "" && e.OpenAI.BaseURL == "" {
			return fmt.Errorf("embedding.openai.api_key is required when embedding.provider is openai")
		}
		if e.OpenAI.RequestsPerSecond <= 0 {
			return fmt.Errorf("embedding.openai.requests_per_second must be positive, got %v", e.OpenAI.RequestsPerSecond)
		}
		if e.Dimensions < 0 {
			return fmt.Errorf("embedding.dimensions must be non-negative, got %d", e.Dimensions)
		}
	default:
		return fmt.Errorf("embedding.provider must be hashing, openai or none, got %q", e.Provider)
	}
	if e.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be at least 1, got %d", e.BatchSize)
	}
	if e.Workers < 1 {
		return fmt.Errorf("embedding.workers must be at least 1, got %d", e.Workers)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.MaxMemory == "" {
		return fmt.Errorf("database.max_memory is required")
	}
	if c.Database.RetainSnapshots < 1 {
		return fmt.Errorf("database.retain_snapshots must be at least 1, got %d", c.Database.RetainSnapshots)
	}
	return nil
}

func (c *Config) validateCacheStore() error {
	if c.CacheStore.TTL < 0 {
		return fmt.Errorf("cache_store.ttl must be non-negative, got %v", c.CacheStore.TTL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}
