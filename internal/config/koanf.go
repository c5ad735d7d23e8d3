// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recsys/config.yaml",
	"/etc/recsys/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Catalog: CatalogConfig{
			Source:          "csv",
			Path:            "/data/books.csv",
			MinPopularity:   0,
			RebuildInterval: 0, // rebuild on demand only
			Columns:         catalog.DefaultSchema(),
		},
		Dedup: DedupConfig{
			Enabled:              true,
			Threshold:            0.8,
			BlockKeyLength:       1,
			Workers:              0, // 0 = use runtime.NumCPU()
			RequireAuthorOverlap: false,
			LargeClusterWarn:     10,
		},
		Graph: GraphConfig{
			SeedMode:  "all",
			SeedCount: 0,
		},
		Recommend: *recommend.DefaultConfig(),
		Embedding: EmbeddingConfig{
			Provider:   "hashing",
			Dimensions: 4096,
			MaxDocFreq: 0.8,
			BatchSize:  256,
			Workers:    4,
			OpenAI: OpenAIConfig{
				Model:             "text-embedding-3-small",
				RequestsPerSecond: 5,
				Burst:             1,
			},
		},
		Database: DatabaseConfig{
			Path:                   "/data/recsys.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,    // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true, // DuckDB default
			RetainSnapshots:        3,
		},
		CacheStore: CacheStoreConfig{
			Enabled: true,
			Path:    "/data/embeddings",
			TTL:     0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults. Only environment variables listed in
// the mapping table are read; everything else in the environment is ignored.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// CATALOG_PATH -> catalog.path
	// RECOMMEND_WEIGHT_CONTENT -> recommend.weights.content
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Catalog mappings
	"catalog_source":             "catalog.source",
	"catalog_path":               "catalog.path",
	"catalog_min_popularity":     "catalog.min_popularity",
	"catalog_rebuild_interval":   "catalog.rebuild_interval",
	"catalog_id_column":          "catalog.columns.id_column",
	"catalog_title_column":       "catalog.columns.title_column",
	"catalog_authors_column":     "catalog.columns.authors_column",
	"catalog_popularity_column":  "catalog.columns.popularity_column",
	"catalog_quality_column":     "catalog.columns.quality_column",
	"catalog_tags_column":        "catalog.columns.tags_column",
	"catalog_references_column":  "catalog.columns.references_column",
	"catalog_description_column": "catalog.columns.description_column",

	// Dedup mappings
	"dedup_enabled":                "dedup.enabled",
	"dedup_threshold":              "dedup.threshold",
	"dedup_block_key_length":       "dedup.block_key_length",
	"dedup_workers":                "dedup.workers",
	"dedup_require_author_overlap": "dedup.require_author_overlap",
	"dedup_large_cluster_warn":     "dedup.large_cluster_warn",

	// Graph mappings
	"graph_seed_mode":  "graph.seed_mode",
	"graph_seed_count": "graph.seed_count",

	// Recommend mappings
	"recommend_weight_reference":         "recommend.weights.reference",
	"recommend_weight_content":           "recommend.weights.content",
	"recommend_weight_tag":               "recommend.weights.tag",
	"recommend_default_k":                "recommend.limits.default_k",
	"recommend_max_k":                    "recommend.limits.max_k",
	"recommend_history_per_item_k":       "recommend.limits.history_per_item_k",
	"recommend_content_reason_threshold": "recommend.content_reason_threshold",
	"recommend_text_field":               "recommend.text_field",
	"recommend_cache_enabled":            "recommend.cache.enabled",
	"recommend_cache_ttl":                "recommend.cache.ttl",
	"recommend_cache_max_entries":        "recommend.cache.max_entries",

	// Embedding mappings
	"embedding_provider":     "embedding.provider",
	"embedding_dimensions":   "embedding.dimensions",
	"embedding_max_doc_freq": "embedding.max_doc_freq",
	"embedding_batch_size":   "embedding.batch_size",
	"embedding_workers":      "embedding.workers",
	"openai_api_key":         "embedding.openai.api_key",
	"openai_base_url":        "embedding.openai.base_url",
	"openai_embedding_model": "embedding.openai.model",
	"openai_rps":             "embedding.openai.requests_per_second",
	"openai_burst":           "embedding.openai.burst",

	// Database mappings
	"duckdb_path":             "database.path",
	"duckdb_max_memory":       "database.max_memory",
	"duckdb_threads":          "database.threads",
	"duckdb_retain_snapshots": "database.retain_snapshots",

	// Embedding cache mappings
	"embedding_cache_enabled": "cache_store.enabled",
	"embedding_cache_path":    "cache_store.path",
	"embedding_cache_ttl":     "cache_store.ttl",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security mappings
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Variables without a mapping return "" and are skipped by the env provider.
//
// Examples:
//   - CATALOG_PATH -> catalog.path
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - OPENAI_API_KEY -> embedding.openai.api_key
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
