// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package config provides centralized configuration management for the
recommendation service.

Configuration is loaded by LoadWithKoanf in three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/recsys/config.yaml, /etc/recsys/config.yml
 3. Environment variables listed in the mapping table

Validation runs last. Any invalid value aborts startup with an error naming
the offending key, before a catalog row has been read.

# Sections

  - server: HTTP listener and timeouts
  - catalog: input format, path, popularity filter, column names, rebuild schedule
  - dedup: title similarity threshold, blocking, worker count
  - graph: closure seed policy
  - recommend: signal weights, result limits, explanation threshold, response cache
  - embedding: content vector provider (hashing, openai, none)
  - database: DuckDB snapshot store
  - cache_store: BadgerDB embedding cache
  - logging: zerolog level and format
  - security: CORS origins and rate limiting

# Environment Variables

Catalog:
  - CATALOG_SOURCE: csv or jsonl (default: csv)
  - CATALOG_PATH: catalog file (default: /data/books.csv)
  - CATALOG_MIN_POPULARITY: keep rows with popularity above this (default: 0)
  - CATALOG_REBUILD_INTERVAL: periodic rebuild, 0 disables (default: 0)
  - CATALOG_<FIELD>_COLUMN: column name overrides

Recommendation:
  - RECOMMEND_WEIGHT_REFERENCE, RECOMMEND_WEIGHT_CONTENT, RECOMMEND_WEIGHT_TAG
  - RECOMMEND_DEFAULT_K, RECOMMEND_MAX_K, RECOMMEND_HISTORY_PER_ITEM_K
  - RECOMMEND_TEXT_FIELD: description, title or title_description

Embedding:
  - EMBEDDING_PROVIDER: hashing, openai or none (default: hashing)
  - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_EMBEDDING_MODEL

Storage:
  - DUCKDB_PATH: snapshot database (default: /data/recsys.duckdb)
  - EMBEDDING_CACHE_PATH: BadgerDB directory (default: /data/embeddings)

Server:
  - HTTP_PORT (default: 8080), HTTP_HOST (default: 0.0.0.0)
  - LOG_LEVEL, LOG_FORMAT
  - CORS_ORIGINS: comma-separated list
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
*/
package config
