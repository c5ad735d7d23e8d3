// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nrchnnas/recsys/internal/refgraph"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "csv" {
		t.Errorf("Catalog.Source = %q, want csv", cfg.Catalog.Source)
	}
	if cfg.Catalog.Columns.IDColumn != "book_id" {
		t.Errorf("Catalog.Columns.IDColumn = %q, want book_id", cfg.Catalog.Columns.IDColumn)
	}
	if cfg.Dedup.Threshold != 0.8 {
		t.Errorf("Dedup.Threshold = %v, want 0.8", cfg.Dedup.Threshold)
	}
	if cfg.Recommend.Weights.Reference != 0.5 || cfg.Recommend.Weights.Content != 0.3 || cfg.Recommend.Weights.Tag != 0.2 {
		t.Errorf("Recommend.Weights = %+v, want 0.5/0.3/0.2", cfg.Recommend.Weights)
	}
	if cfg.Embedding.Provider != "hashing" {
		t.Errorf("Embedding.Provider = %q, want hashing", cfg.Embedding.Provider)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v, want nil", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"CATALOG_PATH", "catalog.path"},
		{"CATALOG_TITLE_COLUMN", "catalog.columns.title_column"},
		{"DEDUP_THRESHOLD", "dedup.threshold"},
		{"GRAPH_SEED_MODE", "graph.seed_mode"},
		{"RECOMMEND_WEIGHT_CONTENT", "recommend.weights.content"},
		{"RECOMMEND_MAX_K", "recommend.limits.max_k"},
		{"OPENAI_API_KEY", "embedding.openai.api_key"},
		{"DUCKDB_PATH", "database.path"},
		{"EMBEDDING_CACHE_PATH", "cache_store.path"},
		{"LOG_LEVEL", "logging.level"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"log_format", "logging.format"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.input); got != tt.expected {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

// TestFindConfigFile tests the CONFIG_PATH override
func TestFindConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty for missing file", got)
	}
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CATALOG_SOURCE", "jsonl")
	t.Setenv("CATALOG_PATH", "/tmp/books.jsonl")
	t.Setenv("CATALOG_MIN_POPULARITY", "20")
	t.Setenv("RECOMMEND_WEIGHT_TAG", "0.4")
	t.Setenv("RECOMMEND_CACHE_TTL", "30s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Catalog.Source != "jsonl" || cfg.Catalog.Path != "/tmp/books.jsonl" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Catalog.MinPopularity != 20 {
		t.Errorf("Catalog.MinPopularity = %d, want 20", cfg.Catalog.MinPopularity)
	}
	if cfg.Recommend.Weights.Tag != 0.4 {
		t.Errorf("Recommend.Weights.Tag = %v, want 0.4", cfg.Recommend.Weights.Tag)
	}
	if cfg.Recommend.Cache.TTL != 30*time.Second {
		t.Errorf("Recommend.Cache.TTL = %v, want 30s", cfg.Recommend.Cache.TTL)
	}
	wantOrigins := []string{"https://a.example", "https://b.example"}
	if strings.Join(cfg.Security.CORSOrigins, ",") != strings.Join(wantOrigins, ",") {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, wantOrigins)
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Catalog.Columns.TitleColumn != "title_without_series" {
		t.Errorf("Catalog.Columns.TitleColumn = %q, want default", cfg.Catalog.Columns.TitleColumn)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
// and that environment variables take precedence over it.
func TestLoadWithKoanfConfigFile(t *testing.T) {
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

catalog:
  path: "/srv/catalog.csv"
  columns:
    id_column: "id"
    title_column: "title"

graph:
  seed_mode: "top_popularity"
  seed_count: 200

recommend:
  weights:
    reference: 1.0
    content: 0.0
    tag: 0.0

logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %+v, want 127.0.0.1:8888", cfg.Server)
	}
	if cfg.Catalog.Path != "/srv/catalog.csv" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.Catalog.Columns.IDColumn != "id" || cfg.Catalog.Columns.TitleColumn != "title" {
		t.Errorf("Catalog.Columns = %+v", cfg.Catalog.Columns)
	}
	// Columns not named in the file keep their defaults
	if cfg.Catalog.Columns.ReferencesColumn != "similar_books" {
		t.Errorf("Catalog.Columns.ReferencesColumn = %q, want similar_books", cfg.Catalog.Columns.ReferencesColumn)
	}
	policy := cfg.Graph.SeedPolicy()
	if policy.Mode != refgraph.SeedTopPopularity || policy.N != 200 {
		t.Errorf("SeedPolicy() = %+v", policy)
	}
	if cfg.Recommend.Weights.Reference != 1.0 || cfg.Recommend.Weights.Content != 0 {
		t.Errorf("Recommend.Weights = %+v", cfg.Recommend.Weights)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env overrides file)", cfg.Logging.Level)
	}
}

// TestLoadWithKoanfValidation tests that invalid values abort loading
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "server.port"},
		{"bad source", map[string]string{"CATALOG_SOURCE": "xml"}, "catalog.source"},
		{"empty id column", map[string]string{"CATALOG_ID_COLUMN": " "}, ""},
		{"bad threshold", map[string]string{"DEDUP_THRESHOLD": "1.5"}, "dedup.threshold"},
		{"bad seed mode", map[string]string{"GRAPH_SEED_MODE": "random"}, "graph.seed_mode"},
		{"seed count required", map[string]string{"GRAPH_SEED_MODE": "first_by_id"}, "graph.seed_count"},
		{"negative weight", map[string]string{"RECOMMEND_WEIGHT_TAG": "-1"}, "recommend"},
		{"bad text field", map[string]string{"RECOMMEND_TEXT_FIELD": "isbn"}, "recommend"},
		{"bad provider", map[string]string{"EMBEDDING_PROVIDER": "word2vec"}, "embedding.provider"},
		{"openai without key", map[string]string{"EMBEDDING_PROVIDER": "openai"}, "embedding.openai.api_key"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "logging.level"},
		{"bad rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}, "security.rate_limit_reqs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), "configuration validation failed") {
				t.Errorf("error = %v, want configuration validation failure", err)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when rate limiting is disabled", err)
	}

	cfg.Embedding.Provider = "none"
	cfg.Embedding.Dimensions = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for provider none", err)
	}
}

func TestSectionConversions(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Dedup.Workers = 3
	cfg.Dedup.RequireAuthorOverlap = true
	opts := cfg.Dedup.Options()
	if opts.Workers != 3 || !opts.RequireAuthorOverlap || opts.Threshold != 0.8 {
		t.Errorf("Dedup.Options() = %+v", opts)
	}

	cfg.Dedup.Workers = 0
	if cfg.Dedup.Options().Workers < 1 {
		t.Error("Dedup.Options().Workers < 1 with auto worker count")
	}

	cfg.Catalog.MinPopularity = 20
	if got := cfg.Catalog.LoadOptions().MinPopularity; got != 20 {
		t.Errorf("Catalog.LoadOptions().MinPopularity = %d, want 20", got)
	}

	cfg.Embedding.OpenAI.APIKey = "sk-test"
	pc := cfg.Embedding.ProviderConfig()
	if pc.APIKey != "sk-test" || pc.BatchSize != cfg.Embedding.BatchSize {
		t.Errorf("Embedding.ProviderConfig() = %+v", pc)
	}

	lc := cfg.Logging.LoggingOptions()
	if lc.Level != "info" || lc.Format != "json" || !lc.Timestamp {
		t.Errorf("Logging.LoggingOptions() = %+v", lc)
	}
}
