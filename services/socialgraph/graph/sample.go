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

// Subgraph is an induced subgraph of a bounded vertex sample.
type Subgraph struct {
	// Vertices are the sampled vertex IDs in ascending order.
	Vertices []VertexID

	// Edges connect two sampled vertices. Each undirected edge appears once
	// with From <= To.
	Edges []Edge
}

// Sample returns the subgraph induced by the n smallest vertex IDs.
//
// n <= 0 yields an empty subgraph. n larger than VertexCount() samples the
// whole graph.
func (g *Graph) Sample(n int) Subgraph {
	sub := Subgraph{
		Vertices: []VertexID{},
		Edges:    []Edge{},
	}
	if n <= 0 {
		return sub
	}

	order := g.vertexOrder()
	if n > len(order) {
		n = len(order)
	}
	sub.Vertices = append(sub.Vertices, order[:n]...)
	if n == 0 {
		return sub
	}

	// order is ascending, so membership is a bound check.
	upper := sub.Vertices[n-1]
	for _, u := range sub.Vertices {
		for _, v := range g.neighborsOf(u) {
			if v < u {
				continue
			}
			if v > upper {
				break
			}
			sub.Edges = append(sub.Edges, Edge{From: u, To: v})
		}
	}
	return sub
}
