// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func testTable() *Table {
	return &Table{
		Columns: []string{"book_id", "title_without_series", "authors", "ratings_count", "average_rating", "genres", "similar_books", "description"},
		Rows: []Record{
			{"book_id": "1", "title_without_series": "Dune", "authors": `[{"author_id": "58", "role": ""}]`, "ratings_count": "500", "average_rating": "4.2", "genres": "Science Fiction, Classics", "similar_books": `["2", "3"]`, "description": "Desert planet"},
			{"book_id": "2", "title_without_series": "Dune Messiah", "authors": `[{'author_id': '58', 'role': ''}]`, "ratings_count": "120.0", "average_rating": "3.9", "genres": "science fiction", "similar_books": "['1']", "description": "Sequel"},
			{"book_id": "3", "title_without_series": "Foundation", "authors": "71", "ratings_count": "oops", "average_rating": "", "genres": "", "similar_books": "1, 2", "description": ""},
			{"book_id": "", "title_without_series": "No id"},
			{"book_id": "1", "title_without_series": "Dune again"},
		},
	}
}

func TestFromRecords(t *testing.T) {
	t.Parallel()

	report := NewReport(DefaultMaxSamples)
	cat, err := FromRecords(testTable(), DefaultSchema(), LoadOptions{}, report)
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	if cat.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cat.Len())
	}
	if !cat.PopularityKnown() {
		t.Error("PopularityKnown() = false, want true")
	}

	dune, _ := cat.Get("1")
	if !reflect.DeepEqual(dune.Authors, []string{"58"}) {
		t.Errorf("Authors = %v, want [58]", dune.Authors)
	}
	if !reflect.DeepEqual(dune.Tags, []string{"science fiction", "classics"}) {
		t.Errorf("Tags = %v, want [science fiction classics]", dune.Tags)
	}
	if !reflect.DeepEqual(dune.References, []string{"2", "3"}) {
		t.Errorf("References = %v, want [2 3]", dune.References)
	}

	messiah, _ := cat.Get("2")
	if messiah.Popularity != 120 {
		t.Errorf("Popularity = %d, want 120", messiah.Popularity)
	}
	if !reflect.DeepEqual(messiah.Authors, []string{"58"}) {
		t.Errorf("Authors = %v, want [58]", messiah.Authors)
	}

	foundation, _ := cat.Get("3")
	if foundation.Popularity != 0 {
		t.Errorf("Popularity = %d, want 0", foundation.Popularity)
	}
	if !reflect.DeepEqual(foundation.References, []string{"1", "2"}) {
		t.Errorf("References = %v, want [1 2]", foundation.References)
	}

	// quote-fixed refs, comma-split refs, malformed popularity, missing id
	if got := report.Count(DataFormatWarning); got != 4 {
		t.Errorf("Count(DataFormatWarning) = %d, want 4", got)
	}
	// duplicate identifier
	if got := report.Count(IntegrityWarning); got != 1 {
		t.Errorf("Count(IntegrityWarning) = %d, want 1", got)
	}
}

func TestFromRecords_MissingColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		columns []string
		wantErr bool
		known   bool
	}{
		{"missing title", []string{"book_id", "ratings_count"}, true, false},
		{"missing id", []string{"title_without_series"}, true, false},
		{"missing popularity", []string{"book_id", "title_without_series"}, false, false},
		{"all present", []string{"book_id", "title_without_series", "ratings_count"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table := &Table{Columns: tt.columns}
			cat, err := FromRecords(table, DefaultSchema(), LoadOptions{}, NewReport(10))
			if tt.wantErr {
				if !IsConfigurationError(err) {
					t.Errorf("FromRecords() error = %v, want ConfigurationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromRecords() error = %v", err)
			}
			if cat.PopularityKnown() != tt.known {
				t.Errorf("PopularityKnown() = %v, want %v", cat.PopularityKnown(), tt.known)
			}
		})
	}
}

func TestFromRecords_MinPopularity(t *testing.T) {
	t.Parallel()

	cat, err := FromRecords(testTable(), DefaultSchema(), LoadOptions{MinPopularity: 120}, NewReport(10))
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	if cat.Len() != 1 || !cat.Contains("1") {
		t.Errorf("Len() = %d, want only item 1", cat.Len())
	}
}

func TestParseReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		want     []string
		strategy ParseStrategy
	}{
		{"", nil, ParseEmpty},
		{"[]", nil, ParseEmpty},
		{"nan", nil, ParseEmpty},
		{`["10", "20"]`, []string{"10", "20"}, ParseJSON},
		{`[10, 20]`, []string{"10", "20"}, ParseJSON},
		{`['10', '20']`, []string{"10", "20"}, ParseQuoteFixed},
		{`[10, '20', "30"`, []string{"10", "20", "30"}, ParseCommaSplit},
		{`42`, []string{"42"}, ParseSingle},
		{`['']`, []string{}, ParseQuoteFixed},
		{`[",", ","]`, []string{",", ","}, ParseJSON},
		{`[,]`, nil, ParseFailed},
	}

	for _, tt := range tests {
		got, strategy := ParseReferences(tt.raw)
		if strategy != tt.strategy {
			t.Errorf("ParseReferences(%q) strategy = %v, want %v", tt.raw, strategy, tt.strategy)
		}
		if len(got) != len(tt.want) || (len(got) > 0 && !reflect.DeepEqual(got, tt.want)) {
			t.Errorf("ParseReferences(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestExtractAuthorIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{`[{"author_id": "1", "role": ""}, {"author_id": "2", "role": "Translator"}]`, []string{"1", "2"}},
		{`[{'author_id': '7', 'role': ''}, {'author_id': '7', 'role': ''}]`, []string{"7"}},
		{"3, 4", []string{"3", "4"}},
	}
	for _, tt := range tests {
		if got := ExtractAuthorIDs(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractAuthorIDs(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFindItem(t *testing.T) {
	t.Parallel()

	cat := New([]Item{
		{ID: "1", Title: "Dune", Popularity: 10},
		{ID: "2", Title: "Dune Messiah", Popularity: 50},
		{ID: "3", Title: "Children of Dune", Popularity: 50},
		{ID: "42", Title: "Foundation", Popularity: 5},
	}, true)

	tests := []struct {
		query   string
		wantID  string
		wantErr error
	}{
		{"42", "42", nil},
		{"1", "1", nil},
		{"dune", "2", nil},
		{"MESSIAH", "2", nil},
		{"foundation", "42", nil},
		{"neuromancer", "", ErrNotFound},
		{"  ", "", ErrNotFound},
	}
	for _, tt := range tests {
		got, err := cat.FindItem(tt.query)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("FindItem(%q) error = %v, want %v", tt.query, err, tt.wantErr)
			continue
		}
		if got.ID != tt.wantID {
			t.Errorf("FindItem(%q) = %q, want %q", tt.query, got.ID, tt.wantID)
		}
	}
}

func TestCompareIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"a", "b", -1},
		{"7", "7", 0},
		{"10", "a", -1},
	}
	for _, tt := range tests {
		if got := CompareIDs(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareIDs(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	r := NewReport(1)
	r.Add(IntegrityWarning, "1", "dangling")
	r.Add(IntegrityWarning, "2", "dangling")

	other := NewReport(5)
	other.Add(DataFormatWarning, "3", "bad")
	r.Merge(other)

	if r.Total() != 3 {
		t.Errorf("Total() = %d, want 3", r.Total())
	}
	if len(r.Samples()) != 1 {
		t.Errorf("len(Samples()) = %d, want 1", len(r.Samples()))
	}
	s := r.Summary()
	if s.Counts["integrity"] != 2 || s.Counts["data_format"] != 1 {
		t.Errorf("Summary().Counts = %v, want integrity=2 data_format=1", s.Counts)
	}
}

func TestReport_Log(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	NewReport(5).Log(&logger, "no warnings")
	if buf.Len() != 0 {
		t.Fatalf("Log() on empty report wrote %q", buf.String())
	}

	r := NewReport(5)
	r.Add(IntegrityWarning, "7", "reference to unknown item 99")
	r.Add(DataFormatWarning, "8", "unparseable similar_books")
	r.Log(&logger, "Catalog build produced warnings")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Log() wrote %d lines, want 3: %q", len(lines), buf.String())
	}
	want := []map[string]any{
		{"level": "warn", "kind": "integrity", "item_id": "7", "detail": "reference to unknown item 99"},
		{"level": "warn", "kind": "data_format", "item_id": "8", "detail": "unparseable similar_books"},
		{"level": "warn", "total": float64(2), "integrity": float64(1), "data_format": float64(1)},
	}
	for i, line := range lines {
		var got map[string]any
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		for k, v := range want[i] {
			if got[k] != v {
				t.Errorf("line %d: %s = %v, want %v", i, k, got[k], v)
			}
		}
	}
}

func TestReadJSONL(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"book_id": 1, "title_without_series": "Dune", "similar_books": ["2"], "ratings_count": 12}`,
		``,
		`{"book_id": "2", "title_without_series": "Dune Messiah", "ratings_count": null}`,
	}, "\n")

	table, err := ReadJSONL(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSONL() error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}
	if got := table.Rows[0]["book_id"]; got != "1" {
		t.Errorf("book_id = %q, want %q", got, "1")
	}
	if got := table.Rows[0]["similar_books"]; got != `["2"]` {
		t.Errorf("similar_books = %q, want %q", got, `["2"]`)
	}
	if got := table.Rows[1]["ratings_count"]; got != "" {
		t.Errorf("ratings_count = %q, want empty", got)
	}
	if !table.HasColumn("similar_books") {
		t.Error("HasColumn(similar_books) = false, want true")
	}

	if _, err := ReadJSONL(context.Background(), strings.NewReader("{broken")); err == nil {
		t.Error("ReadJSONL(broken) error = nil, want error")
	}
}

func TestExtractorFor(t *testing.T) {
	t.Parallel()

	item := &Item{Title: "Dune", Description: "Spice"}
	tests := []struct {
		name string
		want string
	}{
		{"", "Spice"},
		{"description", "Spice"},
		{"title", "Dune"},
		{"title_description", "Dune. Spice"},
	}
	for _, tt := range tests {
		ex, err := ExtractorFor(tt.name)
		if err != nil {
			t.Fatalf("ExtractorFor(%q) error = %v", tt.name, err)
		}
		if got := ex(item); got != tt.want {
			t.Errorf("ExtractorFor(%q)(item) = %q, want %q", tt.name, got, tt.want)
		}
	}
	if _, err := ExtractorFor("isbn"); !IsConfigurationError(err) {
		t.Errorf("ExtractorFor(isbn) error = %v, want ConfigurationError", err)
	}
}
