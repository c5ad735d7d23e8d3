// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import "strings"

const (
	reasonReference = "Explicitly listed as similar"
	reasonContent   = "Similar description"
	reasonGeneral   = "General recommendation"
	reasonAuthor    = "Same author"
)

// explain builds the justification of a scored candidate. Applicable
// reasons are joined with "; ".
func explain(scores ComponentScores, matched []string, contentThreshold float64) string {
	var reasons []string
	if scores.Reference > 0 {
		reasons = append(reasons, reasonReference)
	}
	if scores.Content > contentThreshold {
		reasons = append(reasons, reasonContent)
	}
	if scores.Tag > 0 && len(matched) > 0 {
		reasons = append(reasons, "Matching tags: "+strings.Join(matched, ", "))
	}
	if len(reasons) == 0 {
		return reasonGeneral
	}
	return strings.Join(reasons, "; ")
}
