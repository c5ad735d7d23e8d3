// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

// Package catalog holds the book item model and everything needed to turn
// raw rows into a Catalog.
//
// # Loading
//
// Raw rows come from a Source (JSONL here, CSV through the database
// package) as a Table. FromRecords maps columns through a Schema:
//
//   - identifier and title columns are required (ConfigurationError otherwise)
//   - popularity is optional; without it canonical selection falls back to input order
//   - similar-item lists are decoded tolerantly by ParseReferences
//   - author identifiers are extracted by ExtractAuthorIDs
//
// # Error taxonomy
//
// ErrNotFound and ErrNoRecommendations are serving-time results.
// ConfigurationError is fatal. Row-local problems never abort a batch; they
// are collected in a Report as IntegrityWarning or DataFormatWarning.
package catalog
