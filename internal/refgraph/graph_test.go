// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package refgraph

import (
	"reflect"
	"testing"

	"github.com/nrchnnas/recsys/internal/catalog"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	g := Build([]catalog.Item{
		{ID: "1", References: []string{"2", "3", "2"}},
		{ID: "2", References: []string{"1"}},
		{ID: "3"},
	})

	if got := g.Neighbors("1"); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Errorf("Neighbors(1) = %v, want [2 3]", got)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if !g.HasEdge("2", "1") || g.HasEdge("3", "1") {
		t.Error("HasEdge() mismatch")
	}
	if got := g.Neighbors("missing"); len(got) != 0 {
		t.Errorf("Neighbors(missing) = %v, want empty", got)
	}
}

func TestRepair(t *testing.T) {
	t.Parallel()

	g := Build([]catalog.Item{
		{ID: "1", References: []string{"1", "2", "99"}},
		{ID: "2", References: []string{"77"}},
	})
	known := map[string]struct{}{"1": {}, "2": {}}

	report := catalog.NewReport(10)
	stats := g.RepairWithReport(known, report)
	if stats.SelfLoops != 1 || stats.Dangling != 2 {
		t.Errorf("RepairWithReport() = %+v, want 1 self loop and 2 dangling", stats)
	}
	if report.Count(catalog.IntegrityWarning) != 3 {
		t.Errorf("Count(IntegrityWarning) = %d, want 3", report.Count(catalog.IntegrityWarning))
	}
	if got := g.Neighbors("1"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("Neighbors(1) = %v, want [2]", got)
	}
	if got := g.Neighbors("2"); len(got) != 0 {
		t.Errorf("Neighbors(2) = %v, want empty", got)
	}
	if g.HasEdge("1", "99") {
		t.Error("HasEdge(1, 99) = true after repair")
	}

	if n := g.Repair(known); n != 0 {
		t.Errorf("second Repair() = %d, want 0", n)
	}
}

func TestClosure(t *testing.T) {
	t.Parallel()

	g := Build([]catalog.Item{
		{ID: "a", References: []string{"b"}},
		{ID: "b", References: []string{"c", "a"}},
		{ID: "c", References: []string{"a"}},
		{ID: "d", References: []string{"e"}},
		{ID: "e"},
	})

	tests := []struct {
		name  string
		seeds []string
		want  []string
	}{
		{"cycle", []string{"a"}, []string{"a", "b", "c"}},
		{"leaf", []string{"e"}, []string{"e"}},
		{"unknown seed kept", []string{"zzz"}, []string{"zzz"}},
		{"multiple seeds", []string{"d", "c"}, []string{"d", "c", "e", "a", "b"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := g.ClosureOrder(tt.seeds)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClosureOrder(%v) = %v, want %v", tt.seeds, got, tt.want)
			}
			set := g.Closure(tt.seeds)
			if ok, from, to := g.IsClosed(set); !ok {
				t.Errorf("IsClosed(Closure(%v)) = false at %s->%s", tt.seeds, from, to)
			}
			for _, s := range tt.seeds {
				if !set.Contains(s) {
					t.Errorf("Closure(%v) missing seed %s", tt.seeds, s)
				}
			}
			if again := g.Closure(set.Sorted()); !reflect.DeepEqual(again.Sorted(), set.Sorted()) {
				t.Errorf("Closure(Closure(%v)) = %v, want fixed point %v", tt.seeds, again.Sorted(), set.Sorted())
			}
		})
	}
}

func TestClosure_AfterDedupSelfReference(t *testing.T) {
	t.Parallel()

	// A was merged into B, so A's reference to B became B -> B.
	g := Build([]catalog.Item{
		{ID: "B", References: []string{"B"}},
		{ID: "C"},
	})
	g.Repair(map[string]struct{}{"B": {}, "C": {}})

	got := g.Closure([]string{"B"})
	if !reflect.DeepEqual(got.Sorted(), []string{"B"}) {
		t.Errorf("Closure(B) = %v, want [B]", got.Sorted())
	}
}

func TestIsClosed(t *testing.T) {
	t.Parallel()

	g := Build([]catalog.Item{{ID: "1", References: []string{"2"}}, {ID: "2"}})
	ok, from, to := g.IsClosed(NewSet("1"))
	if ok || from != "1" || to != "2" {
		t.Errorf("IsClosed({1}) = %v %s->%s, want false 1->2", ok, from, to)
	}
}

func TestSelectSeeds(t *testing.T) {
	t.Parallel()

	items := []catalog.Item{
		{ID: "10", Popularity: 5},
		{ID: "9", Popularity: 50},
		{ID: "2", Popularity: 50},
		{ID: "30", Popularity: 1},
	}

	tests := []struct {
		policy SeedPolicy
		want   []string
	}{
		{SeedPolicy{Mode: SeedAll}, []string{"2", "9", "10", "30"}},
		{SeedPolicy{Mode: SeedTopPopularity, N: 3}, []string{"2", "9", "10"}},
		{SeedPolicy{Mode: SeedFirstByID, N: 2}, []string{"2", "9"}},
		{SeedPolicy{Mode: SeedFirstByID, N: 99}, []string{"2", "9", "10", "30"}},
	}
	for _, tt := range tests {
		if got := SelectSeeds(items, tt.policy); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SelectSeeds(%+v) = %v, want %v", tt.policy, got, tt.want)
		}
	}

	reversed := []catalog.Item{items[3], items[2], items[1], items[0]}
	if got := SelectSeeds(reversed, SeedPolicy{Mode: SeedTopPopularity, N: 2}); !reflect.DeepEqual(got, []string{"2", "9"}) {
		t.Errorf("SelectSeeds(reversed) = %v, want [2 9]", got)
	}
}

func TestSeedPolicy_Validate(t *testing.T) {
	t.Parallel()

	if err := (SeedPolicy{Mode: SeedAll}).Validate(); err != nil {
		t.Errorf("Validate(all) error = %v", err)
	}
	if err := (SeedPolicy{Mode: SeedTopPopularity}).Validate(); err == nil {
		t.Error("Validate(top_popularity, N=0) error = nil, want error")
	}
	if err := (SeedPolicy{Mode: "random"}).Validate(); err == nil {
		t.Error("Validate(random) error = nil, want error")
	}
}

func TestRestrictAndApply(t *testing.T) {
	t.Parallel()

	items := []catalog.Item{
		{ID: "1", References: []string{"2", "404"}},
		{ID: "2"},
		{ID: "3", References: []string{"1"}},
	}
	g := Build(items)
	g.Repair(map[string]struct{}{"1": {}, "2": {}, "3": {}})
	repaired := g.ApplyTo(items)
	if !reflect.DeepEqual(repaired[0].References, []string{"2"}) {
		t.Errorf("ApplyTo()[0].References = %v, want [2]", repaired[0].References)
	}
	if !reflect.DeepEqual(items[0].References, []string{"2", "404"}) {
		t.Errorf("input modified: %v", items[0].References)
	}

	kept := Restrict(repaired, g.Closure([]string{"1"}))
	if len(kept) != 2 || kept[0].ID != "1" || kept[1].ID != "2" {
		t.Errorf("Restrict() = %v, want [1 2]", kept)
	}
}
