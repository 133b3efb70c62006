// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"runtime"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sourcegraph/conc/pool"
)

// VertexID identifies a vertex in the social graph.
type VertexID int64

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting InsertEdge calls.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// Edge is an unordered pair of vertex IDs.
type Edge struct {
	From VertexID
	To   VertexID
}

// GraphOptions configures Graph behavior.
type GraphOptions struct {
	// FreezeWorkers bounds the goroutines used to build the ordered
	// neighbor lists in Freeze(). Default: runtime.NumCPU()
	FreezeWorkers int
}

// DefaultGraphOptions returns sensible defaults for graph configuration.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		FreezeWorkers: runtime.NumCPU(),
	}
}

// GraphOption is a functional option for configuring Graph.
type GraphOption func(*GraphOptions)

// WithFreezeWorkers sets the number of goroutines used by Freeze().
//
// If n <= 0, the default is kept.
func WithFreezeWorkers(n int) GraphOption {
	return func(o *GraphOptions) {
		if n > 0 {
			o.FreezeWorkers = n
		}
	}
}

// Graph is an undirected social graph stored as an adjacency mapping.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. It is designed
//	for single-writer access during build, then read-only after Freeze().
//	After Freeze() is called, the graph can be safely read from multiple
//	goroutines, but no further modifications are allowed.
type Graph struct {
	// adjacency maps vertex ID to its neighbor set. Always symmetric.
	adjacency map[VertexID]mapset.Set[VertexID]

	// ordered holds each neighbor set as an ascending slice.
	// Populated by Freeze(); nil while building.
	ordered map[VertexID][]VertexID

	// vertices holds every vertex ID in ascending order.
	// Populated by Freeze(); nil while building.
	vertices []VertexID

	// edgeInsertions counts InsertEdge calls, not distinct edges.
	edgeInsertions int

	state   GraphState
	options GraphOptions

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze() was called.
	// Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// NewGraph creates a new empty graph in the Building state.
//
// Example:
//
//	g := NewGraph()
//	g.InsertEdge(1, 2)
//	g.Freeze()
func NewGraph(opts ...GraphOption) *Graph {
	options := DefaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		adjacency: make(map[VertexID]mapset.Set[VertexID]),
		state:     GraphStateBuilding,
		options:   options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// InsertEdge adds an undirected edge between u and v.
//
// Description:
//
//	Adds v to u's neighbor set and u to v's neighbor set, creating either
//	vertex if it does not exist yet. The insertion counter is incremented
//	on every call, including duplicates, reciprocals and self-loops, so
//	EdgeInsertionCount() can exceed DistinctEdgeCount().
//
// Outputs:
//
//	error - ErrGraphFrozen if Freeze() was called. Nil otherwise.
func (g *Graph) InsertEdge(u, v VertexID) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}

	g.neighborSet(u).Add(v)
	g.neighborSet(v).Add(u)
	g.edgeInsertions++
	return nil
}

// neighborSet returns the neighbor set of id, creating it if absent.
func (g *Graph) neighborSet(id VertexID) mapset.Set[VertexID] {
	set, ok := g.adjacency[id]
	if !ok {
		set = mapset.NewThreadUnsafeSet[VertexID]()
		g.adjacency[id] = set
	}
	return set
}

// Freeze transitions the graph to read-only mode.
//
// Description:
//
//	Builds the ascending vertex list and the ascending neighbor list of
//	every vertex, fanning the per-vertex sorts out over a bounded worker
//	pool. After Freeze(), InsertEdge returns ErrGraphFrozen. Calling
//	Freeze() on a frozen graph is a no-op.
//
// Thread Safety:
//
//	After Freeze() returns, the graph can be safely read from multiple
//	goroutines concurrently.
func (g *Graph) Freeze() {
	if g.state == GraphStateReadOnly {
		return
	}

	vertices := g.sortedVertices()
	lists := make([][]VertexID, len(vertices))

	p := pool.New().WithMaxGoroutines(g.options.FreezeWorkers)
	for i, id := range vertices {
		set := g.adjacency[id]
		p.Go(func() {
			lists[i] = sortedMembers(set)
		})
	}
	p.Wait()

	ordered := make(map[VertexID][]VertexID, len(vertices))
	for i, id := range vertices {
		ordered[id] = lists[i]
	}

	g.vertices = vertices
	g.ordered = ordered
	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// VertexCount returns the number of distinct vertex IDs in the graph.
func (g *Graph) VertexCount() int {
	return len(g.adjacency)
}

// EdgeInsertionCount returns the number of InsertEdge calls that succeeded.
//
// This counts ingestion events, not distinct edges. Use DistinctEdgeCount()
// for the graph-theoretic edge count.
func (g *Graph) EdgeInsertionCount() int {
	return g.edgeInsertions
}

// DistinctEdgeCount returns the number of distinct undirected edges.
//
// A self-loop counts as one edge.
func (g *Graph) DistinctEdgeCount() int {
	count := 0
	for u, set := range g.adjacency {
		set.Each(func(v VertexID) bool {
			if u <= v {
				count++
			}
			return false
		})
	}
	return count
}

// HasVertex returns true if id has appeared as an edge endpoint.
func (g *Graph) HasVertex(id VertexID) bool {
	_, ok := g.adjacency[id]
	return ok
}

// Degree returns the number of distinct neighbors of id (0 if unknown).
func (g *Graph) Degree(id VertexID) int {
	set, ok := g.adjacency[id]
	if !ok {
		return 0
	}
	return set.Cardinality()
}

// Neighbors returns the vertices adjacent to id in ascending order.
//
// Description:
//
//	Returns a fresh slice the caller may modify. An unknown vertex is a
//	valid query and yields an empty, non-nil slice.
func (g *Graph) Neighbors(id VertexID) []VertexID {
	return slices.Clone(g.neighborsOf(id))
}

// Vertices returns every vertex ID in ascending order.
func (g *Graph) Vertices() []VertexID {
	return slices.Clone(g.vertexOrder())
}

// neighborsOf returns the ascending neighbor list of id without copying.
// Callers must not modify the returned slice.
func (g *Graph) neighborsOf(id VertexID) []VertexID {
	if g.ordered != nil {
		if list, ok := g.ordered[id]; ok {
			return list
		}
		return []VertexID{}
	}

	set, ok := g.adjacency[id]
	if !ok {
		return []VertexID{}
	}
	return sortedMembers(set)
}

// vertexOrder returns the ascending vertex list without copying.
func (g *Graph) vertexOrder() []VertexID {
	if g.vertices != nil {
		return g.vertices
	}
	return g.sortedVertices()
}

func (g *Graph) sortedVertices() []VertexID {
	ids := make([]VertexID, 0, len(g.adjacency))
	for id := range g.adjacency {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedMembers(set mapset.Set[VertexID]) []VertexID {
	members := set.ToSlice()
	slices.Sort(members)
	return members
}

// Stats contains statistics about the graph.
//
// Thread Safety: Stats is a value type with no internal state.
type Stats struct {
	// VertexCount is the number of distinct vertices.
	VertexCount int `json:"vertex_count"`

	// EdgeInsertionCount is the number of InsertEdge calls.
	EdgeInsertionCount int `json:"edge_insertion_count"`

	// DistinctEdgeCount is the number of distinct undirected edges.
	DistinctEdgeCount int `json:"distinct_edge_count"`

	// State is the lifecycle state name.
	State string `json:"state"`

	// BuiltAtMilli is the freeze timestamp, zero if not frozen.
	BuiltAtMilli int64 `json:"built_at_milli"`
}

// Stats returns a snapshot of the graph's counters.
func (g *Graph) Stats() Stats {
	return Stats{
		VertexCount:        g.VertexCount(),
		EdgeInsertionCount: g.EdgeInsertionCount(),
		DistinctEdgeCount:  g.DistinctEdgeCount(),
		State:              g.state.String(),
		BuiltAtMilli:       g.BuiltAtMilli,
	}
}
