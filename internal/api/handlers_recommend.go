// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/recommend"
	"github.com/nrchnnas/recsys/internal/validation"
)

// defaultRecommendNum is the result count of /api/v1/recommend when num is
// absent or zero.
const defaultRecommendNum = 5

// RecommendResult is the payload of /api/v1/recommend. NumRecommendations
// echoes the requested count, which may exceed len(RecommendationsList).
type RecommendResult struct {
	BookTitle           string                      `json:"book_title"`
	NumRecommendations  int                         `json:"num_recommendations"`
	Source              *catalog.Item               `json:"source,omitempty"`
	RecommendationsText string                      `json:"recommendations_text"`
	RecommendationsList []string                    `json:"recommendations_list"`
	Items               []recommend.ScoredCandidate `json:"items"`
}

// Recommend handles GET and POST /api/v1/recommend.
// GET reads book_title and num from the query string, POST from a JSON body.
// num defaults to 5.
// An empty result is a 404 NO_RECOMMENDATIONS.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RecommendRequest
	if r.Method == http.MethodPost {
		if err := decodeJSONBody(w, r, &req); err != nil {
			rw.BadRequest(err.Error())
			return
		}
	} else {
		num, err := getIntParam(r, "num", 0)
		if err != nil {
			respondServiceError(rw, r, err, "parse request")
			return
		}
		req = RecommendRequest{BookTitle: r.URL.Query().Get("book_title"), Num: num}
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(rw, r, err, "validate request")
		return
	}
	if req.Num == 0 {
		req.Num = defaultRecommendNum
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.engine.Similar(ctx, req.BookTitle, req.Num)
	if err != nil {
		respondServiceError(rw, r, err, "generate recommendations")
		return
	}
	if len(resp.Items) == 0 {
		respondServiceError(rw, r,
			fmt.Errorf("%w for book title: %s", catalog.ErrNoRecommendations, req.BookTitle), "generate recommendations")
		return
	}

	result := RecommendResult{
		BookTitle:           req.BookTitle,
		NumRecommendations:  req.Num,
		RecommendationsList: make([]string, len(resp.Items)),
		Items:               resp.Items,
	}
	for i := range resp.Items {
		result.RecommendationsList[i] = resp.Items[i].Item.Title
	}

	header := "Recommendations based on title: " + req.BookTitle
	if source, err := h.engine.FindItem(req.BookTitle); err == nil {
		result.Source = &source
		header = "Recommendations based on: " + source.Title
	}
	result.RecommendationsText = header + "\n\n" + strings.Join(result.RecommendationsList, "\n\n")

	rw.SuccessWithMeta(result, responseMeta(resp))
}

// LookupItem handles GET /api/v1/items/lookup?q=
func (h *Handler) LookupItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := LookupRequest{Query: r.URL.Query().Get("q")}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(rw, r, err, "validate request")
		return
	}

	item, err := h.engine.FindItem(req.Query)
	if err != nil {
		respondServiceError(rw, r, fmt.Errorf("lookup %q: %w", req.Query, err), "look up item")
		return
	}
	rw.Success(item)
}

// Similar handles GET /api/v1/items/{itemID}/similar?k=
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	k, err := getIntParam(r, "k", 0)
	if err != nil {
		respondServiceError(rw, r, err, "parse request")
		return
	}
	req := SimilarRequest{ItemID: chi.URLParam(r, "itemID"), K: k}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(rw, r, err, "validate request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.engine.Similar(ctx, req.ItemID, req.K)
	if err != nil {
		respondServiceError(rw, r, err, "find similar items")
		return
	}
	rw.SuccessWithMeta(resp.Items, responseMeta(resp))
}

// History handles POST /api/v1/recommendations/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req HistoryRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(rw, r, err, "validate request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.engine.ForHistory(ctx, req.Items, req.K)
	if err != nil {
		respondServiceError(rw, r, err, "generate history recommendations")
		return
	}
	rw.SuccessWithMeta(resp, responseMeta(resp))
}

// ByAuthor handles GET /api/v1/recommendations/author/{authorID}?k=
func (h *Handler) ByAuthor(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	k, err := getIntParam(r, "k", 0)
	if err != nil {
		respondServiceError(rw, r, err, "parse request")
		return
	}
	req := AuthorRequest{AuthorID: chi.URLParam(r, "authorID"), K: k}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(rw, r, err, "validate request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.engine.ByAuthor(ctx, req.AuthorID, req.K)
	if err != nil {
		respondServiceError(rw, r, err, "list books by author")
		return
	}
	rw.SuccessWithMeta(resp.Items, responseMeta(resp))
}

// ByTag handles GET /api/v1/recommendations/tag/{tag}?min_rating=&k=
func (h *Handler) ByTag(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	k, err := getIntParam(r, "k", 0)
	if err != nil {
		respondServiceError(rw, r, err, "parse request")
		return
	}
	minRating, err := getFloatParam(r, "min_rating", 0)
	if err != nil {
		respondServiceError(rw, r, err, "parse request")
		return
	}
	req := TagRequest{Tag: chi.URLParam(r, "tag"), MinRating: minRating, K: k}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(rw, r, err, "validate request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.engine.ByTag(ctx, req.Tag, req.MinRating, req.K)
	if err != nil {
		respondServiceError(rw, r, err, "list books by tag")
		return
	}
	rw.SuccessWithMeta(resp.Items, responseMeta(resp))
}

// responseMeta copies ranking metadata into the envelope.
func responseMeta(resp *recommend.Response) *APIMeta {
	count := len(resp.Items)
	return &APIMeta{
		SnapshotVersion: resp.Metadata.SnapshotVersion,
		Count:           &count,
	}
}
