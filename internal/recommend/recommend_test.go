// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/embedding"
	"github.com/nrchnnas/recsys/internal/refgraph"
)

func testItems() []catalog.Item {
	return []catalog.Item{
		{ID: "1", Title: "Dune", Authors: []string{"a1"}, Tags: []string{"scifi", "classic"}, References: []string{"3", "999"}, Popularity: 500, Quality: 4.2},
		{ID: "2", Title: "Dune (Illustrated Edition)", Authors: []string{"a1"}, Tags: []string{"scifi"}, Popularity: 50, Quality: 4.0},
		{ID: "3", Title: "Children of Dune", Authors: []string{"a9"}, Tags: []string{"scifi"}, Popularity: 300, Quality: 3.9},
		{ID: "4", Title: "Foundation", Authors: []string{"a2"}, Tags: []string{"scifi", "classic"}, Popularity: 400, Quality: 4.1},
		{ID: "5", Title: "Emma", Authors: []string{"a3"}, Tags: []string{"romance"}, Popularity: 100, Quality: 3.8},
		{ID: "6", Title: "Persuasion", Authors: []string{"a3"}, Tags: []string{"romance", "classic"}, Popularity: 90, Quality: 4.0},
		{ID: "7", Title: "Dune Road", Authors: []string{"a4"}, Popularity: 10, Quality: 3.0},
	}
}

func testSnapshot(t *testing.T, items []catalog.Item, vectors map[string]embedding.Vector) *Snapshot {
	t.Helper()
	cat := catalog.New(items, true)
	graph := refgraph.Build(cat.Items())
	graph.Repair(cat.IDs())
	return NewSnapshot(cat, graph, vectors)
}

func defaultSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	return testSnapshot(t, testItems(), map[string]embedding.Vector{
		"1": {1, 0},
		"3": {1, 0},
		"4": {0.6, 0.8},
		"5": {0, 1},
		"6": {0, 1},
	})
}

func resultIDs(results []ScoredCandidate) []string {
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].Item.ID
	}
	return ids
}

func newTestRanker() *Ranker {
	return NewRanker(NewScorer(DefaultWeights()), 0.2)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative weight", func(c *Config) { c.Weights.Tag = -0.1 }, true},
		{"nan weight", func(c *Config) { c.Weights.Content = math.NaN() }, true},
		{"zero default k", func(c *Config) { c.Limits.DefaultK = 0 }, true},
		{"max below default", func(c *Config) { c.Limits.MaxK = 5 }, true},
		{"zero per item k", func(c *Config) { c.Limits.HistoryPerItemK = 0 }, true},
		{"threshold above one", func(c *Config) { c.ContentReasonThreshold = 1.5 }, true},
		{"unknown text field", func(c *Config) { c.TextField = "isbn" }, true},
		{"cache without ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"disabled cache without ttl", func(c *Config) { c.Cache.Enabled = false; c.Cache.TTL = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ClampK(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	for _, tt := range []struct{ in, want int }{{0, 10}, {-3, 10}, {7, 7}, {1000, 100}} {
		if got := cfg.ClampK(tt.in); got != tt.want {
			t.Errorf("ClampK(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestScorer_Score(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultWeights())
	source := catalog.Item{ID: "1", Tags: []string{"scifi", "classic"}}
	cand := catalog.Item{ID: "3", Tags: []string{"classic", "space"}}

	scores, total, matched := s.Score(&source, &cand, refgraph.NewSet("3"), embedding.Vector{1, 0}, embedding.Vector{1, 0})
	if scores.Reference != 1 {
		t.Errorf("Reference = %v, want 1", scores.Reference)
	}
	if math.Abs(scores.Content-1) > 1e-6 {
		t.Errorf("Content = %v, want 1", scores.Content)
	}
	if scores.Tag != 0.5 {
		t.Errorf("Tag = %v, want 0.5", scores.Tag)
	}
	if math.Abs(total-0.9) > 1e-6 {
		t.Errorf("aggregate = %v, want 0.9", total)
	}
	if !reflect.DeepEqual(matched, []string{"classic"}) {
		t.Errorf("matched = %v, want [classic]", matched)
	}

	// Undefined vector and untagged source.
	bare := catalog.Item{ID: "9"}
	scores, total, _ = s.Score(&bare, &cand, nil, nil, embedding.Vector{1, 0})
	if scores != (ComponentScores{}) || total != 0 {
		t.Errorf("Score(bare) = %+v, %v, want zero", scores, total)
	}
}

func TestIsNearDuplicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		a, b               string
		aAuthors, bAuthors []string
		want               bool
	}{
		{"equal titles", "dune", "dune", nil, nil, true},
		{"substring shared author", "dune", "dune messiah", []string{"a1"}, []string{"a1", "a2"}, true},
		{"substring no shared author", "dune", "dune road", []string{"a1"}, []string{"a4"}, false},
		{"unrelated shared author", "emma", "persuasion", []string{"a3"}, []string{"a3"}, false},
		{"empty title", "", "", nil, nil, false},
	}
	for _, tt := range tests {
		if got := IsNearDuplicate(tt.a, tt.b, tt.aAuthors, tt.bAuthors); got != tt.want {
			t.Errorf("IsNearDuplicate(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scores  ComponentScores
		matched []string
		want    string
	}{
		{"general", ComponentScores{}, nil, "General recommendation"},
		{"reference", ComponentScores{Reference: 1}, nil, "Explicitly listed as similar"},
		{"content below threshold", ComponentScores{Content: 0.2}, nil, "General recommendation"},
		{"all", ComponentScores{Reference: 1, Content: 0.5, Tag: 1}, []string{"scifi", "classic"},
			"Explicitly listed as similar; Similar description; Matching tags: scifi, classic"},
	}
	for _, tt := range tests {
		if got := explain(tt.scores, tt.matched, 0.2); got != tt.want {
			t.Errorf("explain(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	snap := defaultSnapshot(t)
	r := newTestRanker()
	source, _ := snap.Catalog.Get("1")

	got := r.Rank(snap, &source, snap.Catalog.Items(), 10)
	want := []string{"3", "4", "6", "5", "7"}
	if ids := resultIDs(got); !reflect.DeepEqual(ids, want) {
		t.Fatalf("Rank() = %v, want %v", ids, want)
	}
	if math.Abs(got[0].Score-0.9) > 1e-6 {
		t.Errorf("Rank()[0].Score = %v, want 0.9", got[0].Score)
	}
	if got[0].Reason != "Explicitly listed as similar; Similar description; Matching tags: scifi" {
		t.Errorf("Rank()[0].Reason = %q", got[0].Reason)
	}
	if got[4].Reason != "General recommendation" {
		t.Errorf("Rank()[4].Reason = %q, want General recommendation", got[4].Reason)
	}

	if top := r.Rank(snap, &source, snap.Catalog.Items(), 2); len(top) != 2 {
		t.Errorf("len(Rank(k=2)) = %d, want 2", len(top))
	}
}

func TestRank_Deterministic(t *testing.T) {
	t.Parallel()

	snap := defaultSnapshot(t)
	r := newTestRanker()
	source, _ := snap.Catalog.Get("4")

	first := r.Rank(snap, &source, snap.Catalog.Items(), 10)
	second := r.Rank(snap, &source, snap.Catalog.Items(), 10)
	if !reflect.DeepEqual(first, second) {
		t.Error("Rank() returned different results for identical input")
	}
}

func TestRank_EmptyPool(t *testing.T) {
	t.Parallel()

	snap := defaultSnapshot(t)
	r := newTestRanker()
	source, _ := snap.Catalog.Get("1")

	if got := r.Rank(snap, &source, nil, 10); got == nil || len(got) != 0 {
		t.Errorf("Rank(empty pool) = %v, want empty non-nil", got)
	}
	// Only the source and its duplicate remain after filtering.
	pool := []catalog.Item{source, testItems()[1]}
	if got := r.Rank(snap, &source, pool, 10); len(got) != 0 {
		t.Errorf("Rank(filtered pool) = %v, want empty", resultIDs(got))
	}
}

func TestRank_ZeroScoresStillReturned(t *testing.T) {
	t.Parallel()

	// Survivors of deduplicating {A: Dune -> B, B: "Dune ", C: Foundation}.
	snap := testSnapshot(t, []catalog.Item{
		{ID: "B", Title: "Dune ", Popularity: 100},
		{ID: "C", Title: "Foundation"},
	}, nil)
	r := newTestRanker()
	source, _ := snap.Catalog.Get("C")
	pool := []catalog.Item{testSnapshotItem(t, snap, "B")}

	got := r.Rank(snap, &source, pool, 5)
	if len(got) != 1 || got[0].Item.ID != "B" || got[0].Score != 0 {
		t.Errorf("Rank(C, {B}) = %+v, want [B] with score 0", got)
	}
}

func testSnapshotItem(t *testing.T, snap *Snapshot, id string) catalog.Item {
	t.Helper()
	item, ok := snap.Catalog.Get(id)
	if !ok {
		t.Fatalf("item %s missing", id)
	}
	return item
}

func TestRankHistory(t *testing.T) {
	t.Parallel()

	snap := defaultSnapshot(t)
	r := newTestRanker()
	history := []catalog.Item{testSnapshotItem(t, snap, "1"), testSnapshotItem(t, snap, "4")}

	got := r.RankHistory(snap, history, snap.Catalog.Items(), 3, 10)
	if ids := resultIDs(got); !reflect.DeepEqual(ids, []string{"3", "6"}) {
		t.Fatalf("RankHistory() = %v, want [3 6]", ids)
	}
	for _, sc := range got {
		if sc.Frequency != 2 {
			t.Errorf("Frequency(%s) = %d, want 2", sc.Item.ID, sc.Frequency)
		}
	}
	if math.Abs(got[0].Score-0.9) > 1e-6 {
		t.Errorf("Score(3) = %v, want best score 0.9", got[0].Score)
	}

	if got := r.RankHistory(snap, nil, snap.Catalog.Items(), 3, 10); len(got) != 0 {
		t.Errorf("RankHistory(empty) = %v, want empty", resultIDs(got))
	}
}

func TestRankByAuthorAndTag(t *testing.T) {
	t.Parallel()

	snap := defaultSnapshot(t)
	r := newTestRanker()

	if ids := resultIDs(r.RankByAuthor(snap, "a3", 10)); !reflect.DeepEqual(ids, []string{"6", "5"}) {
		t.Errorf("RankByAuthor(a3) = %v, want [6 5]", ids)
	}
	if ids := resultIDs(r.RankByAuthor(snap, "nobody", 10)); len(ids) != 0 {
		t.Errorf("RankByAuthor(nobody) = %v, want empty", ids)
	}
	if ids := resultIDs(r.RankByTag(snap, "Classic", 4.0, 10)); !reflect.DeepEqual(ids, []string{"1", "4", "6"}) {
		t.Errorf("RankByTag(classic, 4.0) = %v, want [1 4 6]", ids)
	}
	if ids := resultIDs(r.RankByTag(snap, "classic", 4.15, 1)); !reflect.DeepEqual(ids, []string{"1"}) {
		t.Errorf("RankByTag(classic, 4.15, k=1) = %v, want [1]", ids)
	}
}

func TestEngine(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	ctx := context.Background()

	if _, err := engine.Similar(ctx, "Dune", 3); !errors.Is(err, ErrNotReady) {
		t.Errorf("Similar() before publish error = %v, want ErrNotReady", err)
	}
	if engine.Ready() {
		t.Error("Ready() = true before publish")
	}

	engine.Publish(defaultSnapshot(t))

	resp, err := engine.Similar(ctx, "Dune", 3)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if ids := resultIDs(resp.Items); !reflect.DeepEqual(ids, []string{"3", "4", "6"}) {
		t.Errorf("Similar() = %v, want [3 4 6]", ids)
	}
	if !reflect.DeepEqual(resp.Metadata.Sources, []string{"1"}) || resp.Metadata.CacheHit {
		t.Errorf("Metadata = %+v, want sources [1] without cache hit", resp.Metadata)
	}

	again, _ := engine.Similar(ctx, "Dune", 3)
	if !again.Metadata.CacheHit {
		t.Error("second Similar() CacheHit = false, want true")
	}
	if !reflect.DeepEqual(resultIDs(again.Items), resultIDs(resp.Items)) {
		t.Error("cached response differs")
	}

	engine.Publish(defaultSnapshot(t))
	fresh, _ := engine.Similar(ctx, "Dune", 3)
	if fresh.Metadata.CacheHit {
		t.Error("Similar() after Publish CacheHit = true, want false")
	}
	if fresh.Metadata.SnapshotVersion == resp.Metadata.SnapshotVersion {
		t.Error("SnapshotVersion unchanged after Publish")
	}

	if _, err := engine.Similar(ctx, "no such book", 3); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Similar(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestEngine_ForHistory(t *testing.T) {
	t.Parallel()

	engine, _ := NewEngine(nil, zerolog.Nop())
	engine.Publish(defaultSnapshot(t))
	ctx := context.Background()

	resp, err := engine.ForHistory(ctx, []string{"1", "Foundation", "missing", "1"}, 0)
	if err != nil {
		t.Fatalf("ForHistory() error = %v", err)
	}
	if !reflect.DeepEqual(resp.Metadata.Sources, []string{"1", "4"}) {
		t.Errorf("Sources = %v, want [1 4]", resp.Metadata.Sources)
	}
	for _, sc := range resp.Items {
		if sc.Item.ID == "1" || sc.Item.ID == "4" {
			t.Errorf("history item %s recommended", sc.Item.ID)
		}
	}

	if _, err := engine.ForHistory(ctx, []string{"missing"}, 5); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("ForHistory(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestEngine_ByAuthorAndTag(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	engine, _ := NewEngine(cfg, zerolog.Nop())
	engine.Publish(defaultSnapshot(t))
	ctx := context.Background()

	resp, err := engine.ByAuthor(ctx, "a1", 10)
	if err != nil {
		t.Fatalf("ByAuthor() error = %v", err)
	}
	if ids := resultIDs(resp.Items); !reflect.DeepEqual(ids, []string{"1", "2"}) {
		t.Errorf("ByAuthor(a1) = %v, want [1 2]", ids)
	}

	resp, err = engine.ByTag(ctx, "romance", 0, 10)
	if err != nil {
		t.Fatalf("ByTag() error = %v", err)
	}
	if ids := resultIDs(resp.Items); !reflect.DeepEqual(ids, []string{"6", "5"}) {
		t.Errorf("ByTag(romance) = %v, want [6 5]", ids)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Limits.DefaultK = 0
	if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
		t.Error("NewEngine(invalid) error = nil, want error")
	}
}
