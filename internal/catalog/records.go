// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one raw row keyed by column name.
type Record map[string]string

// Table is a raw tabular input: the column names and the rows.
type Table struct {
	Columns []string
	Rows    []Record
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Schema maps catalog fields to source column names.
type Schema struct {
	IDColumn          string `koanf:"id_column" validate:"required,notblank"`
	TitleColumn       string `koanf:"title_column" validate:"required,notblank"`
	AuthorsColumn     string `koanf:"authors_column"`
	PopularityColumn  string `koanf:"popularity_column"`
	QualityColumn     string `koanf:"quality_column"`
	TagsColumn        string `koanf:"tags_column"`
	ReferencesColumn  string `koanf:"references_column"`
	DescriptionColumn string `koanf:"description_column"`
}

// DefaultSchema returns the column names of the Goodreads export.
func DefaultSchema() Schema {
	return Schema{
		IDColumn:          "book_id",
		TitleColumn:       "title_without_series",
		AuthorsColumn:     "authors",
		PopularityColumn:  "ratings_count",
		QualityColumn:     "average_rating",
		TagsColumn:        "genres",
		ReferencesColumn:  "similar_books",
		DescriptionColumn: "description",
	}
}

// LoadOptions filters rows at load time.
type LoadOptions struct {
	// MinPopularity drops rows whose popularity is not strictly greater.
	// Zero keeps everything. Ignored when the popularity column is absent.
	MinPopularity int64
}

// FromRecords builds a catalog from raw rows. A missing identifier or title
// column is a ConfigurationError. A missing popularity column is not fatal:
// the catalog reports PopularityKnown() == false. Malformed values are
// recovered and recorded as DataFormatWarnings in report.
func FromRecords(table *Table, schema Schema, opts LoadOptions, report *Report) (*Catalog, error) {
	if schema.IDColumn == "" || !table.HasColumn(schema.IDColumn) {
		return nil, &ConfigurationError{Field: "catalog.columns.id_column", Reason: fmt.Sprintf("column %q not present", schema.IDColumn)}
	}
	if schema.TitleColumn == "" || !table.HasColumn(schema.TitleColumn) {
		return nil, &ConfigurationError{Field: "catalog.columns.title_column", Reason: fmt.Sprintf("column %q not present", schema.TitleColumn)}
	}

	has := func(col string) bool { return col != "" && table.HasColumn(col) }
	popularityKnown := has(schema.PopularityColumn)

	items := make([]Item, 0, len(table.Rows))
	seen := make(map[string]struct{}, len(table.Rows))
	for _, row := range table.Rows {
		id := strings.TrimSpace(row[schema.IDColumn])
		if id == "" {
			report.Add(DataFormatWarning, "", "row without identifier skipped")
			continue
		}
		if _, dup := seen[id]; dup {
			report.Add(IntegrityWarning, id, "duplicate identifier, later row skipped")
			continue
		}

		item := Item{
			ID:    id,
			Title: strings.TrimSpace(row[schema.TitleColumn]),
		}
		if has(schema.DescriptionColumn) {
			item.Description = strings.TrimSpace(row[schema.DescriptionColumn])
		}
		if has(schema.AuthorsColumn) {
			item.Authors = ExtractAuthorIDs(row[schema.AuthorsColumn])
		}
		if has(schema.TagsColumn) {
			item.Tags = ParseTags(row[schema.TagsColumn])
		}
		if has(schema.ReferencesColumn) {
			refs, strategy := ParseReferences(row[schema.ReferencesColumn])
			if strategy.Degraded() {
				report.Add(DataFormatWarning, id, "references parsed with fallback: "+strategy.String())
			}
			item.References = refs
		}
		if popularityKnown {
			n, ok := parseCount(row[schema.PopularityColumn])
			if !ok {
				report.Add(DataFormatWarning, id, "malformed popularity treated as 0")
			}
			item.Popularity = n
			if opts.MinPopularity > 0 && item.Popularity <= opts.MinPopularity {
				continue
			}
		}
		if has(schema.QualityColumn) {
			q, ok := parseRating(row[schema.QualityColumn])
			if !ok {
				report.Add(DataFormatWarning, id, "malformed quality treated as 0")
			}
			item.Quality = q
		}

		seen[id] = struct{}{}
		items = append(items, item)
	}

	return New(items, popularityKnown), nil
}

// parseCount accepts integers and integral floats such as "123.0". Blank
// and NaN values are 0 without being malformed.
func parseCount(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return 0, true
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

func parseRating(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return 0, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
