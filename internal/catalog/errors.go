// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Serving-time errors. Both are recoverable and map to user-visible results.
var (
	// ErrNotFound is returned when a title or identifier matches no item.
	ErrNotFound = errors.New("item not found")

	// ErrNoRecommendations is returned when ranking produced an empty list.
	ErrNoRecommendations = errors.New("no recommendations")
)

// ConfigurationError reports a missing required input, such as the title
// column. It is fatal and raised before any processing begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// WarningKind classifies a non-fatal, row-local problem.
type WarningKind int

const (
	// IntegrityWarning covers dangling references, self references and
	// suspiciously large duplicate clusters.
	IntegrityWarning WarningKind = iota

	// DataFormatWarning covers malformed field values that were recovered
	// with a fallback parse.
	DataFormatWarning
)

// String returns the stable name used in logs and JSON.
func (k WarningKind) String() string {
	switch k {
	case IntegrityWarning:
		return "integrity"
	case DataFormatWarning:
		return "data_format"
	default:
		return "unknown"
	}
}

// Warning is one collected problem.
type Warning struct {
	Kind   WarningKind `json:"-"`
	KindID string      `json:"kind"`
	ItemID string      `json:"item_id,omitempty"`
	Detail string      `json:"detail"`
}

// DefaultMaxSamples bounds how many individual warnings a Report keeps.
const DefaultMaxSamples = 100

// Report accumulates warnings produced by batch operations. Counts are
// exact; only the first MaxSamples warnings are kept verbatim.
// Report is safe for concurrent use.
type Report struct {
	mu         sync.Mutex
	counts     map[WarningKind]int
	samples    []Warning
	maxSamples int
}

// NewReport creates an empty report keeping up to maxSamples warnings.
func NewReport(maxSamples int) *Report {
	if maxSamples < 0 {
		maxSamples = 0
	}
	return &Report{
		counts:     make(map[WarningKind]int),
		maxSamples: maxSamples,
	}
}

// Add records a warning.
func (r *Report) Add(kind WarningKind, itemID, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[kind]++
	if len(r.samples) < r.maxSamples {
		r.samples = append(r.samples, Warning{
			Kind:   kind,
			KindID: kind.String(),
			ItemID: itemID,
			Detail: detail,
		})
	}
}

// Count returns the number of warnings of the given kind.
func (r *Report) Count(kind WarningKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}

// Total returns the number of warnings of all kinds.
func (r *Report) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return total
}

// Samples returns a copy of the retained warnings.
func (r *Report) Samples() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Warning, len(r.samples))
	copy(out, r.samples)
	return out
}

// Merge folds other into r. Samples from other are appended while room remains.
func (r *Report) Merge(other *Report) {
	if other == nil || other == r {
		return
	}
	counts := make(map[WarningKind]int)
	other.mu.Lock()
	for k, n := range other.counts {
		counts[k] = n
	}
	samples := make([]Warning, len(other.samples))
	copy(samples, other.samples)
	other.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, n := range counts {
		r.counts[k] += n
	}
	for _, w := range samples {
		if len(r.samples) >= r.maxSamples {
			break
		}
		r.samples = append(r.samples, w)
	}
}

// Summary is the serializable view of a Report.
type Summary struct {
	Counts  map[string]int `json:"counts"`
	Total   int            `json:"total"`
	Samples []Warning      `json:"samples,omitempty"`
}

// Summary returns a point-in-time copy suitable for JSON encoding.
func (r *Report) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{Counts: make(map[string]int, len(r.counts))}
	for k, n := range r.counts {
		s.Counts[k.String()] = n
		s.Total += n
	}
	s.Samples = make([]Warning, len(r.samples))
	copy(s.Samples, r.samples)
	return s
}

// Log writes each retained sample at warn level with kind, item_id and
// detail fields, followed by the per-kind totals.
func (r *Report) Log(logger *zerolog.Logger, msg string) {
	s := r.Summary()
	if s.Total == 0 {
		return
	}
	for _, w := range s.Samples {
		logger.Warn().
			Str("kind", w.KindID).
			Str("item_id", w.ItemID).
			Str("detail", w.Detail).
			Msg(msg)
	}

	kinds := make([]string, 0, len(s.Counts))
	for k := range s.Counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	ev := logger.Warn().Int("total", s.Total).Int("sampled", len(s.Samples))
	for _, k := range kinds {
		ev = ev.Int(k, s.Counts[k])
	}
	ev.Msg(msg)
}
