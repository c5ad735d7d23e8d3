// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// RecommendRequest is the title based query of /api/v1/recommend.
// A zero Num selects five results.
type RecommendRequest struct {
	BookTitle string `json:"book_title" query:"book_title" validate:"required,notblank,max=500"`
	Num       int    `json:"num" query:"num" validate:"gte=0,lte=1000"`
}

// LookupRequest resolves an identifier or title to an item.
type LookupRequest struct {
	Query string `query:"q" validate:"required,notblank,max=500"`
}

// SimilarRequest ranks the catalog for one item.
type SimilarRequest struct {
	ItemID string `query:"itemID" validate:"required,notblank"`
	K      int    `query:"k" validate:"gte=0,lte=1000"`
}

// HistoryRequest ranks the catalog for a reading history of identifiers
// or titles.
type HistoryRequest struct {
	Items []string `json:"items" validate:"required,min=1,max=100,dive,notblank"`
	K     int      `json:"k" validate:"gte=0,lte=1000"`
}

// AuthorRequest lists books by one author.
type AuthorRequest struct {
	AuthorID string `query:"authorID" validate:"required,notblank"`
	K        int    `query:"k" validate:"gte=0,lte=1000"`
}

// TagRequest lists books carrying a tag above a minimum rating.
type TagRequest struct {
	Tag       string  `query:"tag" validate:"required,notblank"`
	MinRating float64 `query:"min_rating" validate:"gte=0,lte=5"`
	K         int     `query:"k" validate:"gte=0,lte=1000"`
}

// paramError reports a query parameter that could not be parsed.
type paramError struct {
	name  string
	value string
	kind  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be %s, got %q", e.name, e.kind, e.value)
}

// getIntParam parses an optional integer query parameter.
func getIntParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw, kind: "an integer"}
	}
	return v, nil
}

// getFloatParam parses an optional float query parameter.
func getFloatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &paramError{name: name, value: raw, kind: "a number"}
	}
	return v, nil
}

// decodeJSONBody decodes a bounded JSON body into dst.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
