// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package titlesim

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only stopwords", "The", ""},
		{"parenthesized edition", "The Hobbit (Illustrated Edition)", "hobbit"},
		{"subtitle removed", "Harry Potter and the Sorcerer's Stone: Book 1", "harry potter sorcerer s stone"},
		{"edition marker", "Dune - Kindle Edition", "dune"},
		{"collector apostrophe", "Collector's Edition of Emma", "emma"},
		{"phrase joined by stopword removal", "special the edition", ""},
		{"digits kept", "1984", "1984"},
		{"punctuation collapsed", "Catch--22!!", "catch 22"},
		{"unabridged before abridged", "Dracula Unabridged", "dracula"},
		{"unicode letters", "Café  Society", "café society"},
		{"word containing marker kept", "Facebook Stories", "facebook stories"},
		{"unclosed paren", "Emma (Penguin", "emma penguin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"The Lord of the Rings: The Fellowship",
		"A Tale of Two Cities (Penguin Classics)",
		"special the edition",
		"Collector's  the  Edition Revised The Edition",
		"İstanbul Hatırası",
		"Ünïcödé (x) : y",
		"   ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestNormalize_CanonicalEquivalence(t *testing.T) {
	t.Parallel()

	composed := "Caf\u00e9"
	decomposed := "Cafe\u0301"
	if Normalize(composed) != Normalize(decomposed) {
		t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q, want equal",
			composed, Normalize(composed), decomposed, Normalize(decomposed))
	}
}

func TestSequenceRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "", 0},
		{"abcd", "bcde", 0.75},
		{"dune", "dune", 1},
		{"abc", "xyz", 0},
		{"caf\u00e9", "cafe", 0.75},
		// One direction finds a single block, the other two.
		{"tide", "diet", 0.5},
		{"diet", "tide", 0.5},
	}
	for _, tt := range tests {
		if got := SequenceRatio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SequenceRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestScore_Shortcuts(t *testing.T) {
	t.Parallel()

	if got := Score("", "dune"); got != 0 {
		t.Errorf("Score(\"\", dune) = %v, want 0", got)
	}
	if got := Score("dune", ""); got != 0 {
		t.Errorf("Score(dune, \"\") = %v, want 0", got)
	}
	if got := Score("", ""); got != 0 {
		t.Errorf("Score(\"\", \"\") = %v, want 0", got)
	}
	if got := Score("dune messiah", "dune messiah"); got != 1 {
		t.Errorf("Score(identical) = %v, want 1", got)
	}
}

func TestScore_SymmetricAndBounded(t *testing.T) {
	t.Parallel()

	titles := []string{
		"hobbit",
		"hobbit there back again",
		"harry potter sorcerer s stone",
		"harry potter philosopher s stone",
		"dune",
		"dune messiah",
		"x",
		"abcabcabc",
		"cbacbacba",
		"war peace",
		"peace war",
	}
	for _, a := range titles {
		for _, b := range titles {
			ab, ba := Score(a, b), Score(b, a)
			if ab != ba {
				t.Errorf("Score(%q, %q) = %v, Score(%q, %q) = %v, want equal", a, b, ab, b, a, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Score(%q, %q) = %v, want within [0, 1]", a, b, ab)
			}
		}
	}
}

func TestScore_Ordering(t *testing.T) {
	t.Parallel()

	near := Score("harry potter sorcerer s stone", "harry potter sorcerers stone")
	far := Score("harry potter sorcerer s stone", "dune")
	if near <= far {
		t.Errorf("Score(near variant) = %v, Score(unrelated) = %v, want near > unrelated", near, far)
	}
	if near < 0.8 {
		t.Errorf("Score(near variant) = %v, want >= 0.8", near)
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	b := Explain("ab", "ba")
	if math.Abs(b.CharCosine-1) > 1e-12 {
		t.Errorf("CharCosine = %v, want 1", b.CharCosine)
	}
	if b.Length != 1 {
		t.Errorf("Length = %v, want 1", b.Length)
	}

	b = Explain("abc", "abcde")
	if want := 1 - 2.0/6.0; math.Abs(b.Length-want) > 1e-12 {
		t.Errorf("Length = %v, want %v", b.Length, want)
	}

	b = Explain("a b c", "a b")
	if want := 2.0 / 3.0; math.Abs(b.Tokens-want) > 1e-12 {
		t.Errorf("Tokens = %v, want %v", b.Tokens, want)
	}
	if b.Leading != 1 {
		t.Errorf("Leading = %v, want 1", b.Leading)
	}
}

func TestBreakdown_TotalClamped(t *testing.T) {
	t.Parallel()

	b := Breakdown{Sequence: 1, Tokens: 1, CharCosine: 1, Leading: 1, Length: 1}
	if got := b.Total(); math.Abs(got-1) > 1e-9 || got > 1 {
		t.Errorf("Total() = %v, want 1", got)
	}
}
