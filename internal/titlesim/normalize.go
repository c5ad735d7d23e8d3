// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package titlesim

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var parenRegex = regexp.MustCompile(`\([^)]*\)`)

// stopwords are dropped from normalized titles.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "of": {},
	"for": {}, "in": {}, "on": {}, "by": {}, "to": {}, "with": {},
}

// editionPhrases are matched as token sequences after punctuation has been
// collapsed, so "collector's" appears as "collector s".
var editionPhrases = [][]string{
	{"illustrated", "edition"},
	{"kindle", "edition"},
	{"special", "edition"},
	{"collector", "s", "edition"},
	{"collectors", "edition"},
	{"anniversary", "edition"},
	{"revised", "edition"},
	{"complete", "edition"},
	{"audiobook"},
	{"paperback"},
	{"hardcover"},
	{"ebook"},
	{"unabridged"},
	{"abridged"},
}

var lowerCaser = cases.Lower(language.Und)

// Normalize reduces a raw title to its comparison key: lowercased,
// parenthesized spans and any subtitle after the first colon removed,
// edition markers and stopwords dropped, punctuation collapsed to single
// spaces. Normalize is total and idempotent.
func Normalize(title string) string {
	if title == "" {
		return ""
	}

	s := norm.NFC.String(lowerCaser.String(title))
	s = parenRegex.ReplaceAllString(s, " ")
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)

	tokens := strings.Fields(s)
	// Removing a stopword can bring an edition phrase together and vice
	// versa, so both passes repeat until nothing changes.
	for {
		before := len(tokens)
		tokens = dropStopwords(tokens)
		tokens = dropEditionPhrases(tokens)
		if len(tokens) == before {
			break
		}
	}
	return strings.Join(tokens, " ")
}

func dropStopwords(tokens []string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := stopwords[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func dropEditionPhrases(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if n := matchPhrase(tokens[i:]); n > 0 {
			i += n
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

// matchPhrase returns the length of the edition phrase at the head of
// tokens, or 0.
func matchPhrase(tokens []string) int {
	for _, phrase := range editionPhrases {
		if len(phrase) > len(tokens) {
			continue
		}
		matched := true
		for j, w := range phrase {
			if tokens[j] != w {
				matched = false
				break
			}
		}
		if matched {
			return len(phrase)
		}
	}
	return 0
}
