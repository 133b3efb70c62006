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
	"cmp"
	"slices"
)

// DefaultRecommendationLimit is the number of recommendations returned when
// the caller does not ask for a specific count.
const DefaultRecommendationLimit = 5

// Recommendation is a friend-of-friend candidate with its score.
type Recommendation struct {
	// ID is the recommended vertex.
	ID VertexID `json:"user_id"`

	// Score is the number of common neighbors with the queried vertex.
	Score int `json:"mutual_friends_count"`

	// MutualFriends lists the common neighbors in ascending order.
	// len(MutualFriends) == Score.
	MutualFriends []VertexID `json:"mutual_friends"`
}

// Recommend returns up to limit friend-of-friend vertex IDs for id.
//
// Description:
//
//	Scores every vertex two hops from id that is neither id itself nor a
//	direct neighbor by the number of common neighbors. Candidates are
//	ranked by score descending, ties broken by ascending vertex ID.
//
// Inputs:
//
//	id - The vertex to recommend for.
//	limit - Maximum number of results. limit <= 0 yields no results.
//
// Outputs:
//
//	[]VertexID - Ranked candidates, empty if id is unknown or has no
//	friends-of-friends. Never nil.
//
// Limitations:
//
//	O(sum of squared degrees of id's neighbors). No hub pruning.
func (g *Graph) Recommend(id VertexID, limit int) []VertexID {
	ranked := g.RecommendDetailed(id, limit)
	ids := make([]VertexID, len(ranked))
	for i, rec := range ranked {
		ids[i] = rec.ID
	}
	return ids
}

// RecommendDetailed is Recommend with scores and mutual friends attached.
func (g *Graph) RecommendDetailed(id VertexID, limit int) []Recommendation {
	direct, ok := g.adjacency[id]
	if !ok || limit <= 0 {
		return []Recommendation{}
	}

	mutual := make(map[VertexID][]VertexID)
	for _, friend := range g.neighborsOf(id) {
		for _, candidate := range g.neighborsOf(friend) {
			if candidate == id || direct.Contains(candidate) {
				continue
			}
			mutual[candidate] = append(mutual[candidate], friend)
		}
	}

	ranked := make([]Recommendation, 0, len(mutual))
	for candidate, friends := range mutual {
		ranked = append(ranked, Recommendation{
			ID:            candidate,
			Score:         len(friends),
			MutualFriends: friends,
		})
	}

	slices.SortFunc(ranked, func(a, b Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
