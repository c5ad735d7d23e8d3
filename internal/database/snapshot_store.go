// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/metrics"
	"github.com/nrchnnas/recsys/internal/recommend"
	"github.com/nrchnnas/recsys/internal/refgraph"
)

// SnapshotInfo is the catalog-free summary of a stored snapshot.
type SnapshotInfo struct {
	Version  string    `json:"version"`
	BuiltAt  time.Time `json:"built_at"`
	Provider string    `json:"provider"`
	Items    int       `json:"items"`
	Edges    int       `json:"edges"`
	Vectors  int       `json:"vectors"`
}

// SaveSnapshot persists snap in a single transaction and prunes snapshots
// beyond the configured retention. A transaction conflict is retried once.
func (db *DB) SaveSnapshot(ctx context.Context, snap *recommend.Snapshot) error {
	ctx, cancel := db.ensureWriteContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.saveSnapshot(ctx, snap)
	if isTransactionConflict(err) {
		db.logger.Warn().Err(err).Str("version", snap.Version.String()).Msg("Snapshot save conflicted, retrying")
		err = db.saveSnapshot(ctx, snap)
	}
	metrics.RecordDBQuery("insert", "snapshots", time.Since(start), err)
	if err != nil {
		return err
	}

	pruned, err := db.pruneSnapshots(ctx, db.cfg.RetainSnapshots)
	if err != nil {
		// The new snapshot is committed; stale rows only cost disk.
		db.logger.Warn().Err(err).Msg("Failed to prune old snapshots")
	} else if pruned > 0 {
		db.logger.Debug().Int("pruned", pruned).Msg("Pruned old snapshots")
	}
	return nil
}

func (db *DB) saveSnapshot(ctx context.Context, snap *recommend.Snapshot) (err error) {
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot stats: %w", err)
	}
	report, err := json.Marshal(snap.Report)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot report: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	version := snap.Version.String()
	_, err = tx.ExecContext(ctx, `INSERT INTO snapshots
		(version, built_at, provider, popularity_known, item_count, edge_count, vector_count, stats, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		version, snap.BuiltAt.UTC(), snap.Provider, snap.Catalog.PopularityKnown(),
		snap.Catalog.Len(), snap.Graph.EdgeCount(), len(snap.Vectors), string(stats), string(report))
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err = insertItems(ctx, tx, version, snap.Catalog.Items()); err != nil {
		return err
	}
	if err = insertVectors(ctx, tx, version, snap.Vectors); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, version string, items []catalog.Item) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_items
		(snapshot_version, seq, id, title, description, authors, tags, refs, popularity, quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range items {
		item := &items[i]
		authors, err := encodeList(item.Authors)
		if err != nil {
			return err
		}
		tags, err := encodeList(item.Tags)
		if err != nil {
			return err
		}
		refs, err := encodeList(item.References)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, version, i, item.ID, item.Title, item.Description,
			authors, tags, refs, item.Popularity, item.Quality); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}
	return nil
}

func insertVectors(ctx context.Context, tx *sql.Tx, version string, vectors map[string]embedding.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_vectors (snapshot_version, id, vector) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare vector insert: %w", err)
	}
	defer closeQuietly(stmt)

	for id, vec := range vectors {
		data, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("failed to encode vector %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, version, id, string(data)); err != nil {
			return fmt.Errorf("failed to insert vector %s: %w", id, err)
		}
	}
	return nil
}

// pruneSnapshots deletes all but the newest keep snapshots.
func (db *DB) pruneSnapshots(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT version FROM snapshots ORDER BY built_at DESC, version DESC OFFSET %d`, keep))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale snapshots: %w", err)
	}
	var stale []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			closeQuietly(rows)
			return 0, fmt.Errorf("failed to scan snapshot version: %w", err)
		}
		stale = append(stale, v)
	}
	closeWithLog(rows, &db.logger, "rows")
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, v := range stale {
		for _, table := range []string{"snapshot_vectors", "snapshot_items"} {
			//nolint:gosec // table name comes from the fixed list above
			if _, err := db.conn.ExecContext(ctx, "DELETE FROM "+table+" WHERE snapshot_version = ?", v); err != nil {
				return 0, fmt.Errorf("failed to prune %s for %s: %w", table, v, err)
			}
		}
		if _, err := db.conn.ExecContext(ctx, `DELETE FROM snapshots WHERE version = ?`, v); err != nil {
			return 0, fmt.Errorf("failed to prune snapshot %s: %w", v, err)
		}
	}
	return len(stale), nil
}

// ListSnapshots returns stored snapshots, newest first.
func (db *DB) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT version, built_at, provider, item_count, edge_count, vector_count
		FROM snapshots ORDER BY built_at DESC, version DESC`)
	metrics.RecordDBQuery("select", "snapshots", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	out := []SnapshotInfo{}
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Version, &info.BuiltAt, &info.Provider, &info.Items, &info.Edges, &info.Vectors); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// LoadLatestSnapshot restores the newest stored snapshot. It returns
// ErrNoSnapshot when the store is empty.
func (db *DB) LoadLatestSnapshot(ctx context.Context) (*recommend.Snapshot, error) {
	ctx, cancel := db.ensureWriteContext(ctx)
	defer cancel()

	start := time.Now()
	snap, err := db.loadLatestSnapshot(ctx)
	metrics.RecordDBQuery("select", "snapshot_items", time.Since(start), err)
	return snap, err
}

func (db *DB) loadLatestSnapshot(ctx context.Context) (*recommend.Snapshot, error) {
	var (
		version, provider, stats, report string
		builtAt                          time.Time
		popularityKnown                  bool
	)
	err := db.conn.QueryRowContext(ctx, `SELECT version, built_at, provider, popularity_known, stats, report
		FROM snapshots ORDER BY built_at DESC, version DESC LIMIT 1`).
		Scan(&version, &builtAt, &provider, &popularityKnown, &stats, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	id, err := uuid.Parse(version)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot version %q: %w", version, err)
	}

	items, err := db.loadItems(ctx, version)
	if err != nil {
		return nil, err
	}
	vectors, err := db.loadVectors(ctx, version)
	if err != nil {
		return nil, err
	}

	snap := &recommend.Snapshot{
		Version:  id,
		BuiltAt:  builtAt.UTC(),
		Catalog:  catalog.New(items, popularityKnown),
		Graph:    refgraph.Build(items),
		Vectors:  vectors,
		Provider: provider,
	}
	if err := json.Unmarshal([]byte(stats), &snap.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot stats: %w", err)
	}
	if err := json.Unmarshal([]byte(report), &snap.Report); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot report: %w", err)
	}
	return snap, nil
}

func (db *DB) loadItems(ctx context.Context, version string) ([]catalog.Item, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, title, description, authors, tags, refs, popularity, quality
		FROM snapshot_items WHERE snapshot_version = ? ORDER BY seq`, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot items: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	var items []catalog.Item
	for rows.Next() {
		var (
			item                catalog.Item
			description         sql.NullString
			authors, tags, refs sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Title, &description, &authors, &tags, &refs,
			&item.Popularity, &item.Quality); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot item: %w", err)
		}
		item.Description = description.String
		if item.Authors, err = decodeList(authors); err != nil {
			return nil, fmt.Errorf("item %s authors: %w", item.ID, err)
		}
		if item.Tags, err = decodeList(tags); err != nil {
			return nil, fmt.Errorf("item %s tags: %w", item.ID, err)
		}
		if item.References, err = decodeList(refs); err != nil {
			return nil, fmt.Errorf("item %s references: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *DB) loadVectors(ctx context.Context, version string) (map[string]embedding.Vector, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, vector FROM snapshot_vectors WHERE snapshot_version = ?`, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot vectors: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	vectors := make(map[string]embedding.Vector)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot vector: %w", err)
		}
		var vec embedding.Vector
		if err := json.Unmarshal([]byte(data), &vec); err != nil {
			return nil, fmt.Errorf("failed to decode vector %s: %w", id, err)
		}
		vectors[id] = vec
	}
	return vectors, rows.Err()
}

func encodeList(values []string) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode list: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeList(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
