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

import "slices"

// PathResult contains the result of a shortest path query.
type PathResult struct {
	// From is the starting vertex ID.
	From VertexID `json:"from"`

	// To is the target vertex ID.
	To VertexID `json:"to"`

	// Path contains vertex IDs in path order, including From and To.
	// Empty if no path exists.
	Path []VertexID `json:"path"`

	// Length is the number of edges in the path.
	// -1 if no path exists.
	Length int `json:"length"`
}

// Found returns true if a path exists.
func (r PathResult) Found() bool {
	return r.Length >= 0
}

// bfs is the breadth-first traversal shared by path and component queries.
//
// Visits vertices reachable from start in BFS order, enumerating neighbors
// in ascending ID order. When stopAt is non-nil, traversal ends as soon as
// that vertex is dequeued. parent is nil for component traversals.
type bfs struct {
	order   []VertexID
	parent  map[VertexID]VertexID
	visited map[VertexID]struct{}
}

func (g *Graph) traverse(start VertexID, stopAt *VertexID, trackParents bool) *bfs {
	t := &bfs{
		order:   make([]VertexID, 0),
		visited: map[VertexID]struct{}{start: {}},
	}
	if trackParents {
		t.parent = make(map[VertexID]VertexID)
	}

	queue := []VertexID{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		t.order = append(t.order, current)

		if stopAt != nil && current == *stopAt {
			break
		}

		for _, next := range g.neighborsOf(current) {
			if _, seen := t.visited[next]; seen {
				continue
			}
			t.visited[next] = struct{}{}
			if t.parent != nil {
				t.parent[next] = current
			}
			queue = append(queue, next)
		}
	}
	return t
}

// ShortestPath returns a minimum-edge path from start to target.
//
// Description:
//
//	Runs BFS from start and stops once target is dequeued, then follows
//	parent pointers back to start. When several minimal paths exist, the
//	first one discovered under ascending neighbor order is returned.
//	start == target yields a single-vertex path.
//
// Outputs:
//
//	[]VertexID - start..target inclusive, or an empty slice if either
//	endpoint is unknown or target is unreachable. Never nil.
func (g *Graph) ShortestPath(start, target VertexID) []VertexID {
	return g.PathBetween(start, target).Path
}

// PathBetween is ShortestPath with the path length attached.
func (g *Graph) PathBetween(start, target VertexID) PathResult {
	result := PathResult{
		From:   start,
		To:     target,
		Path:   []VertexID{},
		Length: -1,
	}

	if !g.HasVertex(start) || !g.HasVertex(target) {
		return result
	}

	t := g.traverse(start, &target, true)
	if _, reached := t.visited[target]; !reached {
		return result
	}

	path := []VertexID{target}
	for current := target; current != start; {
		current = t.parent[current]
		path = append(path, current)
	}
	slices.Reverse(path)

	result.Path = path
	result.Length = len(path) - 1
	return result
}

// Component returns the connected component containing start.
//
// Members are listed in BFS discovery order, beginning with start.
// An unknown start yields an empty slice.
func (g *Graph) Component(start VertexID) []VertexID {
	if !g.HasVertex(start) {
		return []VertexID{}
	}
	return g.traverse(start, nil, false).order
}
