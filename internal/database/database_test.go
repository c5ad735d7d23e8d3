// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/config"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/recommend"
	"github.com/nrchnnas/recsys/internal/refgraph"
)

// setupTestDB opens an in-memory database with the given retention.
func setupTestDB(t *testing.T, retain int) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{
		Path:                   "",
		MaxMemory:              "256MB",
		Threads:                2,
		PreserveInsertionOrder: true,
		RetainSnapshots:        retain,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func testSnapshot(builtAt time.Time) *recommend.Snapshot {
	items := []catalog.Item{
		{ID: "1", Title: "Dune", Description: "Desert planet", Authors: []string{"a1"}, Tags: []string{"scifi"}, References: []string{"3"}, Popularity: 500, Quality: 4.2},
		{ID: "3", Title: "Children of Dune", Authors: []string{"a1"}, Tags: []string{"scifi"}, References: []string{"1"}, Popularity: 300, Quality: 3.9},
		{ID: "5", Title: "Emma", Popularity: 100, Quality: 3.8},
	}
	snap := recommend.NewSnapshot(catalog.New(items, true), refgraph.Build(items), map[string]embedding.Vector{
		"1": {1, 0},
		"3": {0.6, 0.8},
	})
	snap.BuiltAt = builtAt
	snap.Provider = "hashing-2"
	snap.Stats = recommend.BuildStats{RawItems: 4, Items: 3, DuplicatesFound: 1, Edges: 2, Vectors: 2}
	snap.Report = catalog.Summary{
		Counts:  map[string]int{"integrity": 1},
		Total:   1,
		Samples: []catalog.Warning{{KindID: "integrity", ItemID: "1", Detail: "dangling reference 999"}},
	}
	return snap
}

func TestNew_SchemaVersion(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, 3)
	version, err := db.GetCurrentSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	if version != 1 {
		t.Errorf("GetCurrentSchemaVersion() = %d, want 1", version)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestLoadLatestSnapshot_Empty(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, 3)
	_, err := db.LoadLatestSnapshot(context.Background())
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LoadLatestSnapshot() error = %v, want ErrNoSnapshot", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, 3)
	ctx := context.Background()
	want := testSnapshot(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := db.SaveSnapshot(ctx, want); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := db.LoadLatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadLatestSnapshot() error = %v", err)
	}

	if got.Version != want.Version {
		t.Errorf("Version = %v, want %v", got.Version, want.Version)
	}
	if !got.BuiltAt.Equal(want.BuiltAt) {
		t.Errorf("BuiltAt = %v, want %v", got.BuiltAt, want.BuiltAt)
	}
	if got.Provider != want.Provider {
		t.Errorf("Provider = %q, want %q", got.Provider, want.Provider)
	}
	if !reflect.DeepEqual(got.Catalog.Items(), want.Catalog.Items()) {
		t.Errorf("Items = %+v, want %+v", got.Catalog.Items(), want.Catalog.Items())
	}
	if !got.Catalog.PopularityKnown() {
		t.Error("PopularityKnown() = false, want true")
	}
	if got.Graph.EdgeCount() != 2 || !got.Graph.HasEdge("1", "3") {
		t.Errorf("Graph edges = %d, want 1->3 and 3->1", got.Graph.EdgeCount())
	}
	if !reflect.DeepEqual(got.Vectors, want.Vectors) {
		t.Errorf("Vectors = %v, want %v", got.Vectors, want.Vectors)
	}
	if got.Stats.DuplicatesFound != 1 || got.Stats.Items != 3 {
		t.Errorf("Stats = %+v", got.Stats)
	}
	if got.Report.Total != 1 || len(got.Report.Samples) != 1 || got.Report.Samples[0].ItemID != "1" {
		t.Errorf("Report = %+v", got.Report)
	}

	snapshots, items, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if snapshots != 1 || items != 3 {
		t.Errorf("GetRecordCounts() = %d, %d, want 1, 3", snapshots, items)
	}
}

func TestSaveSnapshot_Retention(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, 2)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var newest *recommend.Snapshot
	for i := 0; i < 4; i++ {
		newest = testSnapshot(base.Add(time.Duration(i) * time.Hour))
		if err := db.SaveSnapshot(ctx, newest); err != nil {
			t.Fatalf("SaveSnapshot(%d) error = %v", i, err)
		}
	}

	list, err := db.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(ListSnapshots()) = %d, want 2", len(list))
	}
	if list[0].Version != newest.Version.String() {
		t.Errorf("ListSnapshots()[0] = %s, want newest %s", list[0].Version, newest.Version)
	}
	if list[0].Items != 3 || list[0].Edges != 2 || list[0].Vectors != 2 {
		t.Errorf("ListSnapshots()[0] = %+v", list[0])
	}

	_, items, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if items != 6 {
		t.Errorf("item rows = %d, want 6 after pruning", items)
	}

	latest, err := db.LoadLatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadLatestSnapshot() error = %v", err)
	}
	if latest.Version != newest.Version {
		t.Errorf("LoadLatestSnapshot().Version = %v, want %v", latest.Version, newest.Version)
	}
}

func TestCSVSource(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, 1)
	path := filepath.Join(t.TempDir(), "books's.csv")
	content := "book_id,title_without_series,authors,ratings_count,similar_books\n" +
		"1,Dune,\"[{\"\"author_id\"\": \"\"a1\"\"}]\",500,\"['3', '4']\"\n" +
		"3,Children of Dune,,,\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	table, err := NewCSVSource(db, path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantColumns := []string{"book_id", "title_without_series", "authors", "ratings_count", "similar_books"}
	if !reflect.DeepEqual(table.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", table.Columns, wantColumns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}
	if got := table.Rows[0]["similar_books"]; got != "['3', '4']" {
		t.Errorf("similar_books = %q", got)
	}
	if got := table.Rows[0]["authors"]; got != `[{"author_id": "a1"}]` {
		t.Errorf("authors = %q", got)
	}
	if got := table.Rows[1]["ratings_count"]; got != "" {
		t.Errorf("empty ratings_count = %q, want empty string", got)
	}

	cat, err := catalog.FromRecords(table, catalog.DefaultSchema(), catalog.LoadOptions{}, catalog.NewReport(10))
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("catalog.Len() = %d, want 2", cat.Len())
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, 1)
	_, err := NewCSVSource(db, filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestQuoteLiteral(t *testing.T) {
	t.Parallel()

	if got := quoteLiteral("/data/o'brien.csv"); got != "'/data/o''brien.csv'" {
		t.Errorf("quoteLiteral() = %q", got)
	}
}
