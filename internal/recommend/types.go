// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"time"

	"github.com/nrchnnas/recsys/internal/catalog"
)

// Mode identifies the kind of ranking query.
type Mode string

const (
	// ModeSimilar ranks candidates for a single source item.
	ModeSimilar Mode = "similar"

	// ModeHistory aggregates single-item rankings over a reading history.
	ModeHistory Mode = "history"

	// ModeAuthor lists other books by an author.
	ModeAuthor Mode = "author"

	// ModeTag lists books carrying a tag.
	ModeTag Mode = "tag"
)

// ComponentScores holds the three signals feeding the aggregate.
type ComponentScores struct {
	// Reference is 1 when the candidate is an explicit reference of the source.
	Reference float64 `json:"reference"`

	// Content is the cosine similarity of the content vectors.
	Content float64 `json:"content"`

	// Tag is the fraction of the source's tags the candidate shares.
	Tag float64 `json:"tag"`
}

// Aggregate returns the weighted sum of the components.
func (c ComponentScores) Aggregate(w Weights) float64 {
	return w.Reference*c.Reference + w.Content*c.Content + w.Tag*c.Tag
}

// ScoredCandidate is one ranked result.
type ScoredCandidate struct {
	// Item is the recommended catalog item.
	Item catalog.Item `json:"item"`

	// Scores are the component scores against the source.
	Scores ComponentScores `json:"scores"`

	// Score is the weighted aggregate.
	Score float64 `json:"score"`

	// Frequency is the number of history items that recommended this
	// candidate. It is 1 for single-item queries.
	Frequency int `json:"frequency"`

	// MatchedTags lists the tags shared with the source.
	MatchedTags []string `json:"matched_tags,omitempty"`

	// Reason is a human-readable justification.
	Reason string `json:"reason"`
}

// Response represents a recommendation response.
type Response struct {
	// Items is the ordered list of recommendations.
	Items []ScoredCandidate `json:"items"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// Mode is the ranking mode used.
	Mode Mode `json:"mode"`

	// Sources lists the identifiers the ranking was computed for.
	Sources []string `json:"sources,omitempty"`

	// SnapshotVersion is the snapshot the answer was computed from.
	SnapshotVersion string `json:"snapshot_version"`

	// LatencyMS is the ranking latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// copyResponse returns a response whose slices do not alias resp.
func copyResponse(resp *Response) *Response {
	out := &Response{
		Items:    make([]ScoredCandidate, len(resp.Items)),
		Metadata: resp.Metadata,
	}
	copy(out.Items, resp.Items)
	out.Metadata.Sources = append([]string(nil), resp.Metadata.Sources...)
	return out
}
