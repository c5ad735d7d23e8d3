// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package pipeline turns a raw catalog source into a published serving snapshot.

A build runs these stages in order:

 1. Load records from the configured source (DuckDB CSV import or JSONL)
 2. Validate the schema and build items, recording DataFormatWarnings
 3. Deduplicate titles and redirect references to canonical items
 4. Build the reference graph and drop dangling edges and self loops
 5. Optionally restrict the catalog to the closure of a seed set
 6. Compute content vectors through the configured embedding provider
 7. Persist the snapshot and publish it to the recommendation engine

A failed build leaves the previously published snapshot in place.

# Usage

	builder, err := pipeline.NewBuilder(source, opts, deduper, provider, db, engine, logger)
	if err != nil {
	    return err
	}
	if _, err := builder.Restore(ctx); err != nil {
	    logger.Warn().Err(err).Msg("restore failed")
	}
	snap, err := builder.Build(ctx)

Only one build runs at a time; a concurrent call returns ErrBuildInProgress.
*/
package pipeline
