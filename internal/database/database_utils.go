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

const (
	// defaultQueryTimeout bounds reads issued without a deadline.
	defaultQueryTimeout = 30 * time.Second

	// defaultWriteTimeout bounds snapshot writes and CSV imports issued
	// without a deadline; both scale with catalog size.
	defaultWriteTimeout = 10 * time.Minute
)

// ensureContext creates a context with 30-second timeout if none provided
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withDefaultTimeout(ctx, defaultQueryTimeout)
}

// ensureWriteContext is ensureContext for bulk operations.
func (db *DB) ensureWriteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withDefaultTimeout(ctx, defaultWriteTimeout)
}

func withDefaultTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), d)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetDatabasePath returns the path to the database file, empty when in-memory.
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

// GetRecordCounts returns the number of stored snapshots and the number of
// item rows across all of them.
func (db *DB) GetRecordCounts(ctx context.Context) (snapshots int64, items int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&snapshots); err != nil {
		return 0, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	if err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshot_items").Scan(&items); err != nil {
		return 0, 0, fmt.Errorf("failed to count snapshot items: %w", err)
	}
	return snapshots, items, nil
}
