// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ParseStrategy records which parse produced a reference list.
type ParseStrategy int

const (
	// ParseEmpty means the raw value was blank.
	ParseEmpty ParseStrategy = iota
	// ParseJSON means the value was a well-formed JSON array.
	ParseJSON
	// ParseQuoteFixed means single quotes had to be replaced before decoding.
	ParseQuoteFixed
	// ParseCommaSplit means brackets and quotes were stripped and the rest split on commas.
	ParseCommaSplit
	// ParseSingle means the value was taken as one bare identifier.
	ParseSingle
	// ParseFailed means nothing usable was found; the list is empty.
	ParseFailed
)

// String returns a short name for logs.
func (s ParseStrategy) String() string {
	switch s {
	case ParseEmpty:
		return "empty"
	case ParseJSON:
		return "json"
	case ParseQuoteFixed:
		return "quote_fixed"
	case ParseCommaSplit:
		return "comma_split"
	case ParseSingle:
		return "single"
	default:
		return "failed"
	}
}

// Degraded reports whether a fallback beyond strict JSON was needed.
func (s ParseStrategy) Degraded() bool {
	return s != ParseEmpty && s != ParseJSON
}

// ParseReferences decodes a similar-items field. It tries, in order: a JSON
// array; the same after replacing single quotes with double quotes; a comma
// split after stripping brackets and quotes; a single bare value. The
// returned list never contains empty identifiers.
func ParseReferences(raw string) ([]string, ParseStrategy) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "null") {
		return nil, ParseEmpty
	}

	if ids, ok := decodeJSONList(raw); ok {
		return ids, ParseJSON
	}
	if ids, ok := decodeJSONList(strings.ReplaceAll(raw, "'", `"`)); ok {
		return ids, ParseQuoteFixed
	}

	stripped := strings.NewReplacer("[", "", "]", "", `"`, "", "'", "").Replace(raw)
	if strings.Contains(stripped, ",") {
		ids := splitList(stripped)
		if len(ids) == 0 {
			return nil, ParseFailed
		}
		return ids, ParseCommaSplit
	}
	if single := strings.TrimSpace(stripped); single != "" {
		return []string{single}, ParseSingle
	}
	return nil, ParseFailed
}

// decodeJSONList accepts only a JSON array whose elements are strings or
// numbers. Other element types are skipped.
func decodeJSONList(raw string) ([]string, bool) {
	if !strings.HasPrefix(raw, "[") {
		return nil, false
	}
	var values []interface{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				ids = append(ids, s)
			}
		case float64:
			ids = append(ids, strconv.FormatFloat(val, 'f', -1, 64))
		}
	}
	return ids, true
}

var authorIDRegex = regexp.MustCompile(`"author_id":\s*"([^"]+)"`)

// ExtractAuthorIDs pulls author identifiers from an authors field. The
// field is either a JSON-like list of {"author_id": "..."} objects or a
// plain comma-separated list. Order of first appearance is kept.
func ExtractAuthorIDs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var ids []string
	if strings.Contains(raw, "author_id") {
		// Some exports use single quotes throughout.
		normalized := strings.ReplaceAll(raw, "'", `"`)
		for _, m := range authorIDRegex.FindAllStringSubmatch(normalized, -1) {
			ids = append(ids, strings.TrimSpace(m[1]))
		}
	} else {
		ids = splitList(strings.NewReplacer("[", "", "]", "", `"`, "", "'", "").Replace(raw))
	}
	return uniqueNonEmpty(ids)
}

// ParseTags splits a comma-separated tag field. Tags are lowercased and
// trimmed; duplicates are dropped.
func ParseTags(raw string) []string {
	parts := splitList(raw)
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return uniqueNonEmpty(parts)
}

func splitList(s string) []string {
	fields := strings.Split(s, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func uniqueNonEmpty(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
