// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package socialgraph serves a frozen social graph over HTTP.
//
// The Service holds the current graph snapshot behind an atomic pointer.
// Reloads build a completely new graph and swap it in, so a request always
// sees one consistent graph for its whole lifetime.
package socialgraph

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/ingest"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Source is the edge-list file. Empty means graphs can only be installed
	// directly with SetGraph.
	Source string

	// CacheSize bounds the recommendation cache of each snapshot.
	CacheSize int

	// WatchDebounce is the debounce window used by Watch. Default: 500ms.
	WatchDebounce time.Duration

	// LoadOptions are passed to every ingest.LoadFile call.
	LoadOptions []ingest.LoadOption

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultServiceOptions returns sensible defaults.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		CacheSize:     1024,
		WatchDebounce: 500 * time.Millisecond,
		Logger:        slog.Default(),
	}
}

// recKey identifies a cached recommendation query.
type recKey struct {
	id    graph.VertexID
	limit int
}

// Snapshot is one immutable, fully built graph plus its query caches.
type Snapshot struct {
	// Graph is frozen.
	Graph *graph.Graph

	// Source is where the graph was loaded from.
	Source string

	// LoadedAt is when the snapshot was installed.
	LoadedAt time.Time

	// Generation increases by one with every installed snapshot.
	Generation uint64

	// Skipped is the number of malformed source lines dropped.
	Skipped int

	recs *queryCache[recKey, []graph.Recommendation]

	communitiesOnce sync.Once
	communities     [][]graph.VertexID
}

// Communities returns the connected components, computed once per snapshot.
func (s *Snapshot) Communities() [][]graph.VertexID {
	s.communitiesOnce.Do(func() {
		s.communities = s.Graph.DetectCommunities()
	})
	return s.communities
}

// Summary describes the current snapshot.
type Summary struct {
	graph.Stats
	Communities int        `json:"num_communities"`
	Source      string     `json:"source"`
	LoadedAt    time.Time  `json:"loaded_at"`
	Generation  uint64     `json:"generation"`
	Skipped     int        `json:"skipped_lines"`
	Cache       CacheStats `json:"recommendation_cache"`
}

// Service answers social graph queries against the current snapshot.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Loads are serialized; queries
// never block on a load.
type Service struct {
	opts   ServiceOptions
	logger *slog.Logger

	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	loadMu     sync.Mutex

	watchMu sync.Mutex
	watcher *ingest.Watcher
}

// NewService creates a service with no snapshot loaded.
func NewService(opts ServiceOptions) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultServiceOptions().CacheSize
	}
	if opts.WatchDebounce <= 0 {
		opts.WatchDebounce = DefaultServiceOptions().WatchDebounce
	}
	return &Service{
		opts:   opts,
		logger: opts.Logger.With(slog.String("component", "socialgraph")),
	}
}

// Source returns the configured edge-list path.
func (s *Service) Source() string {
	return s.opts.Source
}

// Load builds a new snapshot from the configured source and installs it.
//
// Description:
//
//	On failure the previous snapshot, if any, stays in place.
//
// Outputs:
//
//	*ingest.LoadResult - Build counters for the new snapshot.
//	error - ErrNoSource, or wraps ingest.ErrIngestionUnavailable / ctx.Err().
func (s *Service) Load(ctx context.Context) (*ingest.LoadResult, error) {
	return s.load(ctx, "manual")
}

func (s *Service) load(ctx context.Context, trigger string) (*ingest.LoadResult, error) {
	if s.opts.Source == "" {
		return nil, ErrNoSource
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, instrumentationName, "Service.Load",
		trace.WithAttributes(
			attribute.String("source", s.opts.Source),
			attribute.String("trigger", trigger),
		),
	)
	defer span.End()

	opts := append([]ingest.LoadOption{ingest.WithLogger(s.logger)}, s.opts.LoadOptions...)
	result, err := ingest.LoadFile(ctx, s.opts.Source, opts...)
	if err != nil {
		recordReload(ctx, trigger, false)
		telemetry.RecordError(span, err)
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.Error("Graph load failed",
			slog.String("source", s.opts.Source),
			slog.String("trigger", trigger),
			slog.String("error", err.Error()),
			slog.Bool("keeping_previous", s.current.Load() != nil))
		return nil, err
	}

	s.install(result.Graph, result.Source, result.Skipped)
	recordReload(ctx, trigger, true)
	telemetry.SetSpanOK(span)
	return result, nil
}

// SetGraph installs g as the current snapshot, freezing it if necessary.
func (s *Service) SetGraph(g *graph.Graph, source string) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	g.Freeze()
	s.install(g, source, 0)
}

// install must be called with loadMu held.
func (s *Service) install(g *graph.Graph, source string, skipped int) {
	snap := &Snapshot{
		Graph:      g,
		Source:     source,
		LoadedAt:   time.Now(),
		Generation: s.generation.Add(1),
		Skipped:    skipped,
		recs:       newQueryCache[recKey, []graph.Recommendation](s.opts.CacheSize),
	}
	s.current.Store(snap)
	s.logger.Info("Snapshot installed",
		slog.String("source", source),
		slog.Uint64("generation", snap.Generation),
		slog.Int("vertices", g.VertexCount()))
}

// Snapshot returns the current snapshot or ErrGraphNotLoaded.
func (s *Service) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrGraphNotLoaded
	}
	return snap, nil
}

// Ready reports whether a snapshot is installed.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Watch rebuilds the snapshot whenever the source file changes.
//
// Description:
//
//	Starts an ingest.Watcher on the configured source. Each rebuild runs
//	through the same serialized path as Load, so a rebuild and a manual
//	reload never interleave. A failed rebuild is logged and the previous
//	snapshot keeps serving. Calling Watch while a watcher is active is a
//	no-op; once the watcher has stopped (ctx canceled), Watch starts a new
//	one. Close stops the watcher.
func (s *Service) Watch(ctx context.Context) error {
	if s.opts.Source == "" {
		return ErrNoSource
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		if s.watcher.IsWatching() {
			return nil
		}
		s.watcher = nil
	}

	opts := ingest.DefaultWatcherOptions()
	opts.DebounceWindow = s.opts.WatchDebounce
	opts.Logger = s.logger
	opts.Rebuild = func(ctx context.Context, _ string) (*ingest.LoadResult, error) {
		return s.load(ctx, "watch")
	}

	w, err := ingest.NewWatcher(s.opts.Source, nil, &opts)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	s.watcher = w
	s.logger.Info("Watching source for changes", slog.String("path", w.Path()))
	return nil
}

// Watching reports whether a source watcher is active.
func (s *Service) Watching() bool {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	return s.watcher != nil && s.watcher.IsWatching()
}

// Close stops the watcher, if running.
func (s *Service) Close() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
}

// Summary returns counts for the current snapshot.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return Summary{}, err
	}
	ctx, span := telemetry.StartSpan(ctx, instrumentationName, "Service.Summary")
	defer span.End()
	start := time.Now()

	summary := Summary{
		Stats:       snap.Graph.Stats(),
		Communities: len(snap.Communities()),
		Source:      snap.Source,
		LoadedAt:    snap.LoadedAt,
		Generation:  snap.Generation,
		Skipped:     snap.Skipped,
		Cache:       snap.recs.stats(),
	}
	recordQuery(ctx, "summary", start, false)
	return summary, nil
}

// HasVertex reports whether id appears in the current snapshot.
func (s *Service) HasVertex(id graph.VertexID) (bool, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return false, err
	}
	return snap.Graph.HasVertex(id), nil
}

// Neighbors returns the ascending neighbor list of id.
func (s *Service) Neighbors(ctx context.Context, id graph.VertexID) ([]graph.VertexID, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, instrumentationName, "Service.Neighbors",
		trace.WithAttributes(attribute.Int64("vertex.id", int64(id))),
	)
	defer span.End()
	start := time.Now()

	neighbors := snap.Graph.Neighbors(id)
	span.SetAttributes(attribute.Int("result.count", len(neighbors)))
	recordQuery(ctx, "neighbors", start, false)
	return neighbors, nil
}

// ShortestPath returns a minimal-hop path between from and to.
func (s *Service) ShortestPath(ctx context.Context, from, to graph.VertexID) (graph.PathResult, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return graph.PathResult{}, err
	}
	ctx, span := telemetry.StartSpan(ctx, instrumentationName, "Service.ShortestPath",
		trace.WithAttributes(
			attribute.Int64("path.from", int64(from)),
			attribute.Int64("path.to", int64(to)),
		),
	)
	defer span.End()
	start := time.Now()

	result := snap.Graph.PathBetween(from, to)
	span.SetAttributes(attribute.Int("path.length", result.Length))
	recordQuery(ctx, "shortest_path", start, false)
	return result, nil
}

// Recommend returns up to limit friend suggestions for id.
//
// Results are cached per snapshot by (id, limit).
func (s *Service) Recommend(ctx context.Context, id graph.VertexID, limit int) ([]graph.Recommendation, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, instrumentationName, "Service.Recommend",
		trace.WithAttributes(
			attribute.Int64("vertex.id", int64(id)),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()
	start := time.Now()

	recs, cached := snap.recs.getOrCompute(recKey{id: id, limit: limit}, func() []graph.Recommendation {
		return snap.Graph.RecommendDetailed(id, limit)
	})
	span.SetAttributes(
		attribute.Int("result.count", len(recs)),
		attribute.Bool("cache.hit", cached),
	)
	recordQuery(ctx, "recommend", start, cached)
	return recs, nil
}

// Communities returns the connected components of the current snapshot.
func (s *Service) Communities(ctx context.Context) ([][]graph.VertexID, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, instrumentationName, "Service.Communities")
	defer span.End()
	start := time.Now()

	communities := snap.Communities()
	span.SetAttributes(attribute.Int("result.count", len(communities)))
	recordQuery(ctx, "communities", start, false)
	return communities, nil
}

// Sample returns the subgraph induced by the n smallest vertex ids.
func (s *Service) Sample(ctx context.Context, n int) (graph.Subgraph, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return graph.Subgraph{}, err
	}
	ctx, span := telemetry.StartSpan(ctx, instrumentationName, "Service.Sample",
		trace.WithAttributes(attribute.Int("limit", n)),
	)
	defer span.End()
	start := time.Now()

	sub := snap.Graph.Sample(n)
	span.SetAttributes(
		attribute.Int("result.vertices", len(sub.Vertices)),
		attribute.Int("result.edges", len(sub.Edges)),
	)
	recordQuery(ctx, "sample", start, false)
	return sub, nil
}
