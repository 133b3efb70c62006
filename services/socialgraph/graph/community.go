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

// =============================================================================
// Community Detection (connected components)
// =============================================================================

// DetectCommunities partitions every vertex into connected components.
//
// Description:
//
//	Walks vertices in ascending ID order and runs a component BFS from each
//	one not yet assigned. Every vertex lands in exactly one community, and
//	members of a community appear in BFS discovery order. This is pure
//	connectivity: dense and sparse regions of one component are not split.
//
// Outputs:
//
//	[][]VertexID - One slice per component, ordered by smallest member.
//	Empty for an empty graph. Never nil.
func (g *Graph) DetectCommunities() [][]VertexID {
	assigned := make(map[VertexID]struct{}, g.VertexCount())
	communities := make([][]VertexID, 0)

	for _, id := range g.vertexOrder() {
		if _, ok := assigned[id]; ok {
			continue
		}

		members := g.traverse(id, nil, false).order
		for _, member := range members {
			assigned[member] = struct{}{}
		}
		communities = append(communities, members)
	}

	return communities
}
