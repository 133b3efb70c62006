// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest builds social graphs from plain-text edge lists.
//
// The format is one undirected edge per line, two whitespace-separated
// integers: "<from> <to>". Lines that do not parse are skipped silently.
// Only failure to open or read the source is an error.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("socialgraph.ingest")

// Sentinel errors for ingestion.
var (
	// ErrIngestionUnavailable is returned when the edge-list source cannot
	// be opened or read. No graph is produced.
	ErrIngestionUnavailable = errors.New("ingestion source unavailable")

	// ErrEmptyPath is returned when LoadFile is called without a path.
	ErrEmptyPath = errors.New("source path is empty")
)

// contextCheckInterval is how many lines are consumed between context checks.
const contextCheckInterval = 4096

// LoadResult describes a completed build.
type LoadResult struct {
	// Graph is the frozen graph built from the source.
	Graph *graph.Graph

	// Source names where the edges came from (a path or "reader").
	Source string

	// Lines is the number of lines read.
	Lines int

	// Inserted is the number of lines that became edge insertions.
	Inserted int

	// Skipped is the number of malformed lines that were dropped.
	Skipped int

	// Duration is the wall time of the build.
	Duration time.Duration
}

type loadOptions struct {
	graphOpts []graph.GraphOption
	logger    *slog.Logger
}

// LoadOption configures LoadFile and LoadReader.
type LoadOption func(*loadOptions)

// WithGraphOptions passes options through to graph.NewGraph.
func WithGraphOptions(opts ...graph.GraphOption) LoadOption {
	return func(o *loadOptions) {
		o.graphOpts = append(o.graphOpts, opts...)
	}
}

// WithLogger sets the logger used for build progress. Default: slog.Default().
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyLoadOptions(opts []LoadOption) loadOptions {
	options := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// LoadFile opens path and builds a frozen graph from its lines.
//
// Description:
//
//	Fails fast with ErrIngestionUnavailable if the file cannot be opened,
//	before any line is consumed. Otherwise delegates to LoadReader.
//
// Inputs:
//
//	ctx - Context for cancellation (checked every 4096 lines)
//	path - Edge-list file path
//	opts - Load options
//
// Outputs:
//
//	*LoadResult - The frozen graph and build counters
//	error - Wraps ErrEmptyPath, ErrIngestionUnavailable or ctx.Err()
func LoadFile(ctx context.Context, path string, opts ...LoadOption) (*LoadResult, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	file, err := os.Open(path)
	if err != nil {
		ingestFailures.Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrIngestionUnavailable, path, err)
	}
	defer file.Close()

	return LoadReader(ctx, file, path, opts...)
}

// LoadReader builds a frozen graph from the lines of r.
//
// Outputs:
//
//	*LoadResult - The frozen graph and build counters
//	error - Wraps ErrIngestionUnavailable on a read error, or ctx.Err()
func LoadReader(ctx context.Context, r io.Reader, source string, opts ...LoadOption) (*LoadResult, error) {
	options := applyLoadOptions(opts)
	start := time.Now()

	ctx, span := tracer.Start(ctx, "ingest.Load")
	defer span.End()
	span.SetAttributes(attribute.String("ingest.source", source))

	g := graph.NewGraph(options.graphOpts...)
	er := NewEdgeReader(r)
	inserted := 0

	for edge := range er.All() {
		if inserted%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				span.SetStatus(codes.Error, "cancelled")
				return nil, fmt.Errorf("load %s: %w", source, err)
			}
		}
		// The graph is private to this build, so it is never frozen here.
		_ = g.InsertEdge(edge.From, edge.To)
		inserted++
	}

	if err := er.Err(); err != nil {
		ingestFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: read %s: %v", ErrIngestionUnavailable, source, err)
	}

	g.Freeze()

	result := &LoadResult{
		Graph:    g,
		Source:   source,
		Lines:    er.Lines(),
		Inserted: inserted,
		Skipped:  er.Skipped(),
		Duration: time.Since(start),
	}
	recordLoad(result)

	span.SetAttributes(
		attribute.Int("graph.vertex_count", g.VertexCount()),
		attribute.Int("graph.edge_insertions", inserted),
		attribute.Int("ingest.skipped_lines", result.Skipped),
	)
	span.SetStatus(codes.Ok, "")

	options.logger.Info("Graph built",
		slog.String("source", source),
		slog.Int("vertices", g.VertexCount()),
		slog.Int("edge_insertions", inserted),
		slog.Int("skipped_lines", result.Skipped),
		slog.Duration("duration", result.Duration))

	return result, nil
}
