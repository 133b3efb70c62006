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
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func writeEdgeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edges.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadReader_SkipsMalformedLines(t *testing.T) {
	result, err := LoadReader(context.Background(), strings.NewReader("1 2\nabc\n3 4"), "test", WithLogger(quietLogger()))
	require.NoError(t, err)

	g := result.Graph
	assert.True(t, g.IsFrozen())
	assert.Equal(t, []graph.VertexID{1, 2, 3, 4}, g.Vertices())
	assert.Equal(t, 2, g.EdgeInsertionCount())
	assert.Equal(t, 3, result.Lines)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "test", result.Source)
}

func TestLoadReader_SkipsOverlongLine(t *testing.T) {
	input := "1 2\n" + strings.Repeat("x", 2<<20) + "\n3 4\n"
	result, err := LoadReader(context.Background(), strings.NewReader(input), "overlong", WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, []graph.VertexID{1, 2, 3, 4}, result.Graph.Vertices())
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, result.Lines)
}

func TestLoadReader_Empty(t *testing.T) {
	result, err := LoadReader(context.Background(), strings.NewReader(""), "empty", WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Graph.VertexCount())
	assert.Empty(t, result.Graph.DetectCommunities())
}

func TestLoadReader_ReadError(t *testing.T) {
	r := iotest.DataErrReader(iotest.ErrReader(errors.New("i/o failure")))
	result, err := LoadReader(context.Background(), r, "broken", WithLogger(quietLogger()))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrIngestionUnavailable)
}

func TestLoadReader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := LoadReader(ctx, strings.NewReader("1 2\n"), "cancelled", WithLogger(quietLogger()))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# header\n")
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "%d %d\n", i, (i+1)%100)
	}
	path := writeEdgeFile(t, sb.String())

	result, err := LoadFile(context.Background(), path,
		WithLogger(quietLogger()),
		WithGraphOptions(graph.WithFreezeWorkers(3)),
	)
	require.NoError(t, err)

	assert.Equal(t, path, result.Source)
	assert.Equal(t, 100, result.Graph.VertexCount())
	assert.Equal(t, 100, result.Graph.DistinctEdgeCount())
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Graph.DetectCommunities(), 1)
}

func TestLoadFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.txt")

	result, err := LoadFile(context.Background(), path)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrIngestionUnavailable)
	assert.Contains(t, err.Error(), path)
}

func TestLoadFile_EmptyPath(t *testing.T) {
	_, err := LoadFile(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPath)
}
