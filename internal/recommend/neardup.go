// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package recommend

import (
	"strings"

	"github.com/nrchnnas/recsys/internal/catalog"
)

// IsNearDuplicate is the per-query duplicate check applied before scoring.
// Two items are near duplicates when their normalized titles are equal, or
// when one normalized title contains the other and the items share an
// author. Empty normalized titles are never near duplicates.
func IsNearDuplicate(sourceTitle, candidateTitle string, sourceAuthors, candidateAuthors []string) bool {
	if sourceTitle == "" || candidateTitle == "" {
		return false
	}
	if sourceTitle == candidateTitle {
		return true
	}
	if !strings.Contains(sourceTitle, candidateTitle) && !strings.Contains(candidateTitle, sourceTitle) {
		return false
	}
	return catalog.SharesAuthor(sourceAuthors, candidateAuthors)
}
