// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the in-memory undirected social graph and the
// analytics that run over it.
//
// The graph is an adjacency mapping from vertex ID to the set of its
// neighbors. Vertices are implicit: a vertex exists once it has appeared as
// an endpoint of an inserted edge. Four read-only queries are built on it:
// neighbor lookup, shortest path (BFS), friend recommendation by common
// neighbors, and community detection by connected components.
//
// # Enumeration Order
//
// Neighbors and vertices always enumerate in ascending ID order. Every
// traversal uses that order, so results are reproducible for a given graph.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed for:
//   - Single-writer access during build phase (InsertEdge calls)
//   - Read-only access after Freeze() is called
//
// After Freeze(), the graph can be safely read from multiple goroutines.
//
// # Lifecycle
//
// A typical graph lifecycle:
//  1. Create with NewGraph()
//  2. Build with InsertEdge() calls
//  3. Call Freeze() to finalize
//  4. Query with Neighbors(), ShortestPath(), Recommend(), DetectCommunities()
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	// Once Freeze() is called, the graph becomes read-only and no further
	// edges can be inserted.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")
)
