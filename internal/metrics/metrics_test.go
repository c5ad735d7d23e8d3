// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "snapshot_items"))

	RecordDBQuery("INSERT", "snapshot_items", 5*time.Millisecond, nil)
	RecordDBQuery("INSERT", "snapshot_items", 5*time.Millisecond, errors.New("constraint"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "snapshot_items"))
	if after-before != 1 {
		t.Errorf("DBQueryErrors delta = %v, want 1", after-before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommend", "200"))
	RecordAPIRequest("GET", "/api/v1/recommend", "200", 3*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommend", "200"))
	if after-before != 1 {
		t.Errorf("APIRequestsTotal delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v", got, before)
	}
}

func TestRecordDedup(t *testing.T) {
	exactBefore := testutil.ToFloat64(DedupClustersTotal.WithLabelValues("exact"))
	removedBefore := testutil.ToFloat64(DedupRemovedTotal)

	RecordDedup(time.Second, 2, 3, 7)

	if got := testutil.ToFloat64(DedupClustersTotal.WithLabelValues("exact")) - exactBefore; got != 2 {
		t.Errorf("exact clusters delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(DedupRemovedTotal) - removedBefore; got != 7 {
		t.Errorf("removed delta = %v, want 7", got)
	}
}

func TestRecordGraphRepair(t *testing.T) {
	before := testutil.ToFloat64(GraphEdgesRemovedTotal.WithLabelValues("self_loop"))
	RecordGraphRepair(4, 1)
	if got := testutil.ToFloat64(GraphEdgesRemovedTotal.WithLabelValues("self_loop")) - before; got != 1 {
		t.Errorf("self_loop delta = %v, want 1", got)
	}
}

func TestRecordCaches(t *testing.T) {
	hits := testutil.ToFloat64(RankCacheHits)
	misses := testutil.ToFloat64(EmbeddingCacheMisses)

	RecordRankCache(true)
	RecordEmbeddingCache(false)

	if got := testutil.ToFloat64(RankCacheHits) - hits; got != 1 {
		t.Errorf("RankCacheHits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EmbeddingCacheMisses) - misses; got != 1 {
		t.Errorf("EmbeddingCacheMisses delta = %v, want 1", got)
	}
}

func TestRecordEmbeddingRequest(t *testing.T) {
	before := testutil.ToFloat64(EmbeddingRequestsTotal.WithLabelValues("openai", "error"))
	RecordEmbeddingRequest("openai", errors.New("timeout"))
	if got := testutil.ToFloat64(EmbeddingRequestsTotal.WithLabelValues("openai", "error")) - before; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestRecordSnapshot(t *testing.T) {
	before := testutil.ToFloat64(SnapshotBuildsTotal.WithLabelValues("success"))
	RecordSnapshotBuild(2*time.Second, nil)
	if got := testutil.ToFloat64(SnapshotBuildsTotal.WithLabelValues("success")) - before; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}

	RecordSnapshotPublished(120, 340, map[string]int{"integrity": 3}, time.Unix(1700000000, 0))
	if got := testutil.ToFloat64(SnapshotItems); got != 120 {
		t.Errorf("SnapshotItems = %v, want 120", got)
	}
	if got := testutil.ToFloat64(SnapshotWarnings.WithLabelValues("integrity")); got != 3 {
		t.Errorf("SnapshotWarnings[integrity] = %v, want 3", got)
	}
	if got := testutil.ToFloat64(SnapshotPublishedTimestamp); got != 1700000000 {
		t.Errorf("SnapshotPublishedTimestamp = %v, want 1700000000", got)
	}
}
