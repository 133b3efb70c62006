// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloadOutcome struct {
	result *LoadResult
	err    error
}

func startWatcher(t *testing.T, path string) (*Watcher, <-chan reloadOutcome) {
	t.Helper()
	outcomes := make(chan reloadOutcome, 8)
	opts := DefaultWatcherOptions()
	opts.DebounceWindow = 50 * time.Millisecond
	opts.Logger = quietLogger()
	opts.LoadOptions = []LoadOption{WithLogger(quietLogger())}

	w, err := NewWatcher(path, func(result *LoadResult, err error) {
		outcomes <- reloadOutcome{result, err}
	}, &opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	require.NoError(t, w.Start(ctx))
	return w, outcomes
}

func waitOutcome(t *testing.T, outcomes <-chan reloadOutcome) reloadOutcome {
	t.Helper()
	select {
	case o := <-outcomes:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
		return reloadOutcome{}
	}
}

func TestWatcher_RebuildsOnWrite(t *testing.T) {
	path := writeEdgeFile(t, "1 2\n")
	w, outcomes := startWatcher(t, path)
	assert.True(t, w.IsWatching())

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, w.Path())

	require.NoError(t, os.WriteFile(path, []byte("1 2\n2 3\n3 4\n"), 0o644))

	o := waitOutcome(t, outcomes)
	require.NoError(t, o.err)
	assert.Equal(t, 4, o.result.Graph.VertexCount())
	assert.True(t, o.result.Graph.IsFrozen())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	path := writeEdgeFile(t, "1 2\n")
	_, outcomes := startWatcher(t, path)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("1 2\n5 6\n"), 0o644))
	}

	o := waitOutcome(t, outcomes)
	require.NoError(t, o.err)
	assert.Equal(t, 4, o.result.Graph.VertexCount())

	select {
	case extra := <-outcomes:
		t.Fatalf("expected a single rebuild, got another: %+v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writeEdgeFile(t, "1 2\n")
	_, outcomes := startWatcher(t, path)

	other := filepath.Join(filepath.Dir(path), "other.txt")
	require.NoError(t, os.WriteFile(other, []byte("9 9\n"), 0o644))

	select {
	case o := <-outcomes:
		t.Fatalf("unexpected rebuild: %+v", o)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := writeEdgeFile(t, "1 2\n")
	w, _ := startWatcher(t, path)

	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestWatcher_StopsWhenContextCanceled(t *testing.T) {
	path := writeEdgeFile(t, "1 2\n")
	w, err := NewWatcher(path, nil, &WatcherOptions{Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.True(t, w.IsWatching())

	cancel()
	assert.Eventually(t, func() bool { return !w.IsWatching() }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_CustomRebuild(t *testing.T) {
	path := writeEdgeFile(t, "1 2\n")
	calls := make(chan string, 4)

	w, err := NewWatcher(path, func(result *LoadResult, err error) {
		assert.NoError(t, err)
		assert.Equal(t, "custom", result.Source)
	}, &WatcherOptions{
		DebounceWindow: 50 * time.Millisecond,
		Logger:         quietLogger(),
		Rebuild: func(ctx context.Context, p string) (*LoadResult, error) {
			calls <- p
			g := graph.NewGraph()
			g.Freeze()
			return &LoadResult{Graph: g, Source: "custom"}, nil
		},
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("3 4\n"), 0o644))

	select {
	case p := <-calls:
		assert.Equal(t, w.Path(), p)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}
}

func TestNewWatcher_EmptyPath(t *testing.T) {
	_, err := NewWatcher("", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyPath)
}
