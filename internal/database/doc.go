// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package database provides the DuckDB-backed snapshot store and CSV catalog
import.

# Snapshot Store

Each published snapshot is written in one transaction to three tables:

  - snapshots: version, build time, provider, counts, stats and warning report (JSON text)
  - snapshot_items: deduplicated items with repaired references, in catalog order
  - snapshot_vectors: content vectors (JSON text)

LoadLatestSnapshot rebuilds the catalog and reference graph from the newest
row so a restarted server can answer queries before its first rebuild.
Only the newest database.retain_snapshots snapshots are kept.

# CSV Import

CSVSource implements catalog.Source with read_csv_auto, reading every column
as text. Empty cells arrive as empty strings.

# Connection

An empty database.path opens an in-memory database, which tests use. The
connection disables extension auto-install so startup never reaches the
network.

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()
*/
package database
