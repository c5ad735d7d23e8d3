// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package config

import (
	"time"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/dedup"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/logging"
	"github.com/nrchnnas/recsys/internal/recommend"
	"github.com/nrchnnas/recsys/internal/refgraph"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Dedup      DedupConfig      `koanf:"dedup"`
	Graph      GraphConfig      `koanf:"graph"`
	Recommend  recommend.Config `koanf:"recommend"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
	Database   DatabaseConfig   `koanf:"database"`
	CacheStore CacheStoreConfig `koanf:"cache_store"`
	Logging    LoggingConfig    `koanf:"logging"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// CatalogConfig describes where the raw catalog comes from and how its
// columns are named.
type CatalogConfig struct {
	// Source is the input format: csv (imported through DuckDB) or jsonl.
	Source string `koanf:"source"`

	// Path is the catalog file location.
	Path string `koanf:"path"`

	// MinPopularity drops rows whose popularity is not strictly greater.
	// Zero keeps everything.
	MinPopularity int64 `koanf:"min_popularity"`

	// RebuildInterval schedules periodic snapshot rebuilds. Zero disables them.
	RebuildInterval time.Duration `koanf:"rebuild_interval"`

	// Columns maps logical fields to input column names.
	Columns catalog.Schema `koanf:"columns"`
}

// LoadOptions returns the row filter for catalog.FromRecords.
func (c *CatalogConfig) LoadOptions() catalog.LoadOptions {
	return catalog.LoadOptions{MinPopularity: c.MinPopularity}
}

// DedupConfig holds duplicate detection settings.
type DedupConfig struct {
	Enabled              bool    `koanf:"enabled"`
	Threshold            float64 `koanf:"threshold"`
	BlockKeyLength       int     `koanf:"block_key_length"`
	Workers              int     `koanf:"workers"` // 0 = use runtime.NumCPU()
	RequireAuthorOverlap bool    `koanf:"require_author_overlap"`
	LargeClusterWarn     int     `koanf:"large_cluster_warn"`
}

// Options converts the section to dedup engine options.
func (c *DedupConfig) Options() dedup.Options {
	opts := dedup.DefaultOptions()
	opts.Threshold = c.Threshold
	opts.BlockKeyLength = c.BlockKeyLength
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	opts.RequireAuthorOverlap = c.RequireAuthorOverlap
	opts.LargeClusterWarn = c.LargeClusterWarn
	return opts
}

// GraphConfig selects the seed set whose reference closure is kept.
type GraphConfig struct {
	// SeedMode is all, top_popularity or first_by_id.
	SeedMode string `koanf:"seed_mode"`

	// SeedCount is N for the bounded seed modes.
	SeedCount int `koanf:"seed_count"`
}

// SeedPolicy converts the section to a refgraph seed policy.
func (c *GraphConfig) SeedPolicy() refgraph.SeedPolicy {
	return refgraph.SeedPolicy{Mode: refgraph.SeedMode(c.SeedMode), N: c.SeedCount}
}

// EmbeddingConfig holds content vector settings.
type EmbeddingConfig struct {
	// Provider is hashing (local TF-IDF feature hashing), openai or none.
	Provider string `koanf:"provider"`

	// Dimensions is the vector width for the hashing provider and, when
	// non-zero, the requested width for openai models that support it.
	Dimensions int `koanf:"dimensions"`

	// MaxDocFreq drops hashing features present in more than this fraction
	// of documents.
	MaxDocFreq float64 `koanf:"max_doc_freq"`

	BatchSize int `koanf:"batch_size"`
	Workers   int `koanf:"workers"`

	OpenAI OpenAIConfig `koanf:"openai"`
}

// OpenAIConfig holds remote embedding API settings.
type OpenAIConfig struct {
	APIKey            string  `koanf:"api_key"`
	BaseURL           string  `koanf:"base_url"`
	Model             string  `koanf:"model"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// ProviderConfig converts the section to embedding.OpenAIConfig.
func (c *EmbeddingConfig) ProviderConfig() embedding.OpenAIConfig {
	return embedding.OpenAIConfig{
		APIKey:            c.OpenAI.APIKey,
		BaseURL:           c.OpenAI.BaseURL,
		Model:             c.OpenAI.Model,
		Dimensions:        c.Dimensions,
		BatchSize:         c.BatchSize,
		RequestsPerSecond: c.OpenAI.RequestsPerSecond,
		Burst:             c.OpenAI.Burst,
	}
}

// DatabaseConfig holds DuckDB snapshot store settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // 0 = use runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // DuckDB default: true
	RetainSnapshots        int    `koanf:"retain_snapshots"`         // older snapshots are pruned after a save
}

// CacheStoreConfig holds the persistent embedding cache settings.
type CacheStoreConfig struct {
	Enabled bool          `koanf:"enabled"`
	Path    string        `koanf:"path"` // empty = in-memory
	TTL     time.Duration `koanf:"ttl"`  // 0 = never expire
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// LoggingOptions converts the section to logging.Config.
func (c *LoggingConfig) LoggingOptions() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// SecurityConfig holds the HTTP exposure settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
