// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. It is created with
// WithRequiredStructEnabled so nested structs tagged required are checked.
//
// Field names in errors come from the json, query or koanf tag, in that
// order, so a failing API parameter is reported as "book_title" rather than
// "Title" and a failing configuration column as "title_column".
//
// # Custom validators
//
//   - notblank: string must contain a non-whitespace character
//
// # Usage
//
//	type SimilarRequest struct {
//	    ItemID string `json:"item_id" validate:"required,notblank"`
//	    K      int    `json:"k" validate:"gte=0,lte=100"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    // respond 400 with apiErr.Code == "VALIDATION_ERROR"
//	}
package validation
