// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package main is the entry point for the recsys server.

The server loads a book catalog, removes duplicate editions, repairs the
reference graph between books, computes content vectors and serves
recommendations over a JSON HTTP API. Snapshots are persisted to DuckDB so a
restart serves immediately from the last good build.

# Application Architecture

	RootSupervisor ("recsys")
	├── BuildSupervisor ("build-layer")
	│   └── SnapshotService (restore, scheduled and on-demand rebuilds)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (chi router)

Startup order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB snapshot store and CSV importer
 4. Embedding: hashing (local), openai (remote, badger-cached) or none
 5. Build pipeline: dedup engine, reference graph, snapshot builder
 6. Supervisor tree: snapshot service and HTTP server

# Configuration

Priority: Environment variables > Config file > Defaults

	HTTP_PORT=8080
	CATALOG_SOURCE=csv             # csv or jsonl
	CATALOG_PATH=/data/books.csv
	CATALOG_REBUILD_INTERVAL=0     # 0 = rebuild on demand only
	DEDUP_ENABLED=true
	DEDUP_THRESHOLD=0.8
	GRAPH_SEED_MODE=all            # all, top_popularity or first_by_id
	EMBEDDING_PROVIDER=hashing     # hashing, openai or none
	OPENAI_API_KEY=<key>           # required for openai
	DUCKDB_PATH=/data/recsys.duckdb
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains
in-flight requests within server.shutdown_timeout, a running build is
canceled and the database is closed.
*/
package main
