// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/metrics"
)

// CSVSource imports a delimited catalog file through DuckDB's CSV reader.
// Every column is read as text; typing and tolerant parsing happen in
// catalog.FromRecords.
type CSVSource struct {
	db   *DB
	path string
}

var _ catalog.Source = (*CSVSource)(nil)

// NewCSVSource creates a source reading path through db.
func NewCSVSource(db *DB, path string) *CSVSource {
	return &CSVSource{db: db, path: path}
}

// Load reads the whole file. Missing cells become empty strings.
func (s *CSVSource) Load(ctx context.Context) (*catalog.Table, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", s.path, err)
	}

	ctx, cancel := s.db.ensureWriteContext(ctx)
	defer cancel()

	start := time.Now()
	table, err := s.load(ctx)
	metrics.RecordDBQuery("import", "read_csv_auto", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.db.logger.Info().
		Str("path", s.path).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Dur("duration", time.Since(start)).
		Msg("Catalog CSV imported")
	return table, nil
}

func (s *CSVSource) load(ctx context.Context) (*catalog.Table, error) {
	query := fmt.Sprintf(`SELECT * FROM read_csv_auto(%s, header = true, all_varchar = true)`, quoteLiteral(s.path))

	rows, err := s.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	defer closeWithLog(rows, &s.db.logger, "rows")

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read catalog columns: %w", err)
	}

	table := &catalog.Table{Columns: columns}
	values := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan catalog row %d: %w", len(table.Rows)+1, err)
		}
		rec := make(catalog.Record, len(columns))
		for i, col := range columns {
			rec[col] = values[i].String
		}
		table.Rows = append(table.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	return table, nil
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
