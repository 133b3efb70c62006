// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package socialgraph

import (
	"time"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
)

// ServiceVersion is the socialgraph service version.
const ServiceVersion = "0.1.0"

// =============================================================================
// GRAPH VIEW (Cytoscape elements)
// =============================================================================

// ElementsResponse is the response for GET /api/graph.
//
// The shape is Cytoscape's elements JSON, with IDs rendered as strings.
type ElementsResponse struct {
	Nodes []NodeElement `json:"nodes"`
	Edges []EdgeElement `json:"edges"`
}

// NodeElement wraps a Cytoscape node.
type NodeElement struct {
	Data NodeData `json:"data"`
}

// NodeData is a Cytoscape node's data block.
type NodeData struct {
	ID string `json:"id"`
}

// EdgeElement wraps a Cytoscape edge.
type EdgeElement struct {
	Data EdgeData `json:"data"`
}

// EdgeData is a Cytoscape edge's data block.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// =============================================================================
// QUERIES
// =============================================================================

// SearchResponse is the response for GET /api/graph/search.
type SearchResponse struct {
	NodeID    graph.VertexID   `json:"node_id"`
	Exists    bool             `json:"exists"`
	Neighbors []graph.VertexID `json:"neighbors"`
}

// StatsResponse is the response for GET /api/graph/stats.
type StatsResponse struct {
	// NumVertices is the number of distinct vertices.
	NumVertices int `json:"num_vertices"`

	// NumEdges is the number of edge insertions, duplicates included.
	NumEdges int `json:"num_edges"`

	// NumDistinctEdges counts each undirected pair once.
	NumDistinctEdges int `json:"num_distinct_edges"`

	// NumCommunities is the number of connected components.
	NumCommunities int `json:"num_communities"`

	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	Generation uint64    `json:"generation"`
}

// NeighborsResponse is the response for GET /api/graph/neighbors/:id.
type NeighborsResponse struct {
	Neighbors []graph.VertexID `json:"neighbors"`
}

// RecommendationsResponse is the response for GET /api/graph/recommendations/:id.
type RecommendationsResponse struct {
	UserID          graph.VertexID         `json:"user_id"`
	Recommendations []graph.Recommendation `json:"recommendations"`
}

// ShortestPathResponse is the response for GET /api/graph/shortest-path.
type ShortestPathResponse struct {
	// Path is empty when no path exists.
	Path []graph.VertexID `json:"path"`

	// Length is the hop count, -1 when no path exists.
	Length int `json:"length"`
}

// CommunitiesResponse is the response for GET /api/graph/communities.
type CommunitiesResponse struct {
	Communities [][]graph.VertexID `json:"communities"`
	Count       int                `json:"count"`
}

// ReloadResponse is the response for POST /api/graph/reload.
type ReloadResponse struct {
	Source         string  `json:"source"`
	Generation     uint64  `json:"generation"`
	Vertices       int     `json:"vertices"`
	EdgeInsertions int     `json:"edge_insertions"`
	SkippedLines   int     `json:"skipped_lines"`
	DurationMs     float64 `json:"duration_ms"`
}

// =============================================================================
// HEALTH
// =============================================================================

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	// Status is "healthy".
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`
}

// ReadyResponse is the response for GET /api/ready.
type ReadyResponse struct {
	// Ready is true once a snapshot is installed.
	Ready bool `json:"ready"`

	// Generation of the current snapshot, 0 when not ready.
	Generation uint64 `json:"generation"`

	// Vertices in the current snapshot.
	Vertices int `json:"vertices"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the machine-readable error code.
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
