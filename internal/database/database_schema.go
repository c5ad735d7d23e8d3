// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the snapshot tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements.
//
// List-valued item fields and vectors are stored as JSON text so that a
// snapshot round-trips without depending on DuckDB LIST binding.
func (db *DB) getTableCreationQueries() []string {
	return []string{
		// One row per published snapshot
		`CREATE TABLE IF NOT EXISTS snapshots (
			version TEXT PRIMARY KEY,
			built_at TIMESTAMP NOT NULL,
			provider TEXT NOT NULL,
			popularity_known BOOLEAN NOT NULL,
			item_count INTEGER NOT NULL,
			edge_count INTEGER NOT NULL,
			vector_count INTEGER NOT NULL,
			stats TEXT NOT NULL,
			report TEXT NOT NULL
		);`,

		// Deduplicated items with repaired references
		`CREATE TABLE IF NOT EXISTS snapshot_items (
			snapshot_version TEXT NOT NULL,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			authors TEXT,
			tags TEXT,
			refs TEXT,
			popularity BIGINT NOT NULL,
			quality DOUBLE NOT NULL,
			PRIMARY KEY (snapshot_version, id)
		);`,

		// Content vectors
		`CREATE TABLE IF NOT EXISTS snapshot_vectors (
			snapshot_version TEXT NOT NULL,
			id TEXT NOT NULL,
			vector TEXT NOT NULL,
			PRIMARY KEY (snapshot_version, id)
		);`,
	}
}

// createIndexes creates secondary indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

// getIndexQueries returns the index creation SQL statements
func (db *DB) getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_snapshots_built_at ON snapshots(built_at);`,
	}
}
