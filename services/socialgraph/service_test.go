// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package socialgraph

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func writeEdges(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edges.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestService(t *testing.T, source string) *Service {
	t.Helper()
	svc := NewService(ServiceOptions{
		Source:        source,
		CacheSize:     4,
		WatchDebounce: 50 * time.Millisecond,
		Logger:        quietLogger(),
	})
	t.Cleanup(svc.Close)
	return svc
}

// socialFixture is the sample network used across service and handler tests:
//
//	1 - 2 - 3      10 - 11
//	|       |
//	4 ----- 5
func socialFixture() *graph.Graph {
	g := graph.NewGraph()
	for _, e := range [][2]graph.VertexID{{1, 2}, {2, 3}, {1, 4}, {4, 5}, {3, 5}, {10, 11}, {2, 1}} {
		_ = g.InsertEdge(e[0], e[1])
	}
	return g
}

func TestService_NotLoaded(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	assert.False(t, svc.Ready())

	_, err := svc.Snapshot()
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.Neighbors(ctx, 1)
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.Recommend(ctx, 1, 5)
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.ShortestPath(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.Communities(ctx)
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.Sample(ctx, 10)
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.Summary(ctx)
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
}

func TestService_NoSource(t *testing.T) {
	svc := newTestService(t, "")

	_, err := svc.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
	assert.ErrorIs(t, svc.Watch(context.Background()), ErrNoSource)
}

func TestService_Load(t *testing.T) {
	path := writeEdges(t, "1 2\nbad\n2 3\n")
	svc := newTestService(t, path)

	result, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Graph.VertexCount())
	assert.True(t, svc.Ready())

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, path, snap.Source)
	assert.Equal(t, 1, snap.Skipped)
	assert.True(t, snap.Graph.IsFrozen())
}

func TestService_LoadFailureKeepsPreviousSnapshot(t *testing.T) {
	path := writeEdges(t, "1 2\n")
	svc := newTestService(t, path)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = svc.Load(context.Background())
	assert.ErrorIs(t, err, ingest.ErrIngestionUnavailable)

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 2, snap.Graph.VertexCount())
}

func TestService_Queries(t *testing.T) {
	svc := newTestService(t, "")
	svc.SetGraph(socialFixture(), "fixture")
	ctx := context.Background()

	neighbors, err := svc.Neighbors(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []graph.VertexID{1, 3}, neighbors)

	path, err := svc.ShortestPath(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []graph.VertexID{1, 4, 5}, path.Path)
	assert.Equal(t, 2, path.Length)

	unreachable, err := svc.ShortestPath(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, unreachable.Path)

	recs, err := svc.Recommend(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, graph.VertexID(3), recs[0].ID)
	assert.Equal(t, graph.VertexID(5), recs[1].ID)

	communities, err := svc.Communities(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]graph.VertexID{{1, 2, 4, 3, 5}, {10, 11}}, communities)

	sub, err := svc.Sample(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []graph.VertexID{1, 2, 3}, sub.Vertices)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.VertexCount)
	assert.Equal(t, 7, summary.EdgeInsertionCount)
	assert.Equal(t, 6, summary.DistinctEdgeCount)
	assert.Equal(t, 2, summary.Communities)
	assert.Equal(t, "fixture", summary.Source)
}

func TestService_RecommendCache(t *testing.T) {
	svc := newTestService(t, "")
	svc.SetGraph(socialFixture(), "fixture")
	ctx := context.Background()

	first, err := svc.Recommend(ctx, 1, 5)
	require.NoError(t, err)
	second, err := svc.Recommend(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	snap, _ := svc.Snapshot()
	stats := snap.recs.stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	// A new snapshot starts with an empty cache.
	svc.SetGraph(socialFixture(), "fixture")
	snap, _ = svc.Snapshot()
	assert.Equal(t, 0, snap.recs.stats().Entries)
	assert.Equal(t, uint64(2), snap.Generation)
}

func TestService_Watch(t *testing.T) {
	path := writeEdges(t, "1 2\n")
	svc := newTestService(t, path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := svc.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Watch(ctx))
	require.NoError(t, svc.Watch(ctx), "second Watch is a no-op")

	require.NoError(t, os.WriteFile(path, []byte("1 2\n2 3\n3 4\n"), 0o644))

	assert.Eventually(t, func() bool {
		snap, err := svc.Snapshot()
		return err == nil && snap.Graph.VertexCount() == 4
	}, 5*time.Second, 20*time.Millisecond)
}

func TestService_WatchRestartsAfterCancel(t *testing.T) {
	path := writeEdges(t, "1 2\n")
	svc := newTestService(t, path)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	first, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Watch(first))
	require.True(t, svc.Watching())
	cancel()
	require.Eventually(t, func() bool { return !svc.Watching() }, 2*time.Second, 10*time.Millisecond)

	second, cancelSecond := context.WithCancel(context.Background())
	defer cancelSecond()
	require.NoError(t, svc.Watch(second))
	assert.True(t, svc.Watching())

	require.NoError(t, os.WriteFile(path, []byte("1 2\n2 3\n"), 0o644))
	assert.Eventually(t, func() bool {
		snap, err := svc.Snapshot()
		return err == nil && snap.Graph.VertexCount() == 3
	}, 5*time.Second, 20*time.Millisecond)
}

func TestService_WatchRebuildWaitsForLoad(t *testing.T) {
	path := writeEdges(t, "1 2\n")
	svc := newTestService(t, path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := svc.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Watch(ctx))

	// While a load holds the lock, a triggered rebuild must not install.
	svc.loadMu.Lock()
	require.NoError(t, os.WriteFile(path, []byte("1 2\n2 3\n3 4\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Generation)
	svc.loadMu.Unlock()

	assert.Eventually(t, func() bool {
		snap, err := svc.Snapshot()
		return err == nil && snap.Graph.VertexCount() == 4
	}, 5*time.Second, 20*time.Millisecond)
}

func TestQueryCache_ConcurrentMissesComputeOnce(t *testing.T) {
	c := newQueryCache[recKey, []graph.Recommendation](8)
	key := recKey{id: 1, limit: 5}
	want := []graph.Recommendation{{ID: 3, Score: 1, MutualFriends: []graph.VertexID{2}}}

	var calls atomic.Int32
	var wg sync.WaitGroup
	results := make([][]graph.Recommendation, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.getOrCompute(key, func() []graph.Recommendation {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return want
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range results {
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 1, c.stats().Entries)
}

func TestQueryCache(t *testing.T) {
	c := newQueryCache[int, string](2)

	c.put(1, "a")
	c.put(2, "b")
	_, ok := c.get(1) // 1 is now most recent
	assert.True(t, ok)

	c.put(3, "c") // evicts 2
	_, ok = c.get(2)
	assert.False(t, ok)

	v, cached := c.getOrCompute(3, func() string { return "unused" })
	assert.True(t, cached)
	assert.Equal(t, "c", v)

	v, cached = c.getOrCompute(4, func() string { return "d" })
	assert.False(t, cached)
	assert.Equal(t, "d", v)

	stats := c.stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 2, stats.Capacity)
	assert.Equal(t, int64(2), stats.Evictions)
}
