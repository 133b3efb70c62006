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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/ingest"
)

const (
	// DefaultSampleLimit is the vertex count for GET /api/graph without ?limit.
	DefaultSampleLimit = 50

	// MaxSampleLimit caps ?limit on GET /api/graph.
	MaxSampleLimit = 5000

	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Handlers contains the HTTP handlers for the social graph API.
type Handlers struct {
	svc         *Service
	sampleLimit int
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc, sampleLimit: DefaultSampleLimit}
}

// WithSampleLimit sets the default vertex count for GET /api/graph.
func (h *Handlers) WithSampleLimit(n int) *Handlers {
	if n > 0 {
		h.sampleLimit = min(n, MaxSampleLimit)
	}
	return h
}

// HandleGraph handles GET /api/graph.
//
// Description:
//
//	Returns the subgraph induced by the smallest vertex IDs as Cytoscape
//	elements, for the graph view.
//
// Query Parameters:
//
//	limit: Number of vertices (optional, default 50, max 5000)
//
// Response:
//
//	200 OK: ElementsResponse
//	400 Bad Request: limit is not a positive integer
//	503 Service Unavailable: No graph loaded
func (h *Handlers) HandleGraph(c *gin.Context) {
	logger := handlerLogger(c, "HandleGraph")

	limit := h.sampleLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  "INVALID_LIMIT",
			})
			return
		}
		limit = min(n, MaxSampleLimit)
	}

	sub, err := h.svc.Sample(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}

	resp := ElementsResponse{
		Nodes: make([]NodeElement, 0, len(sub.Vertices)),
		Edges: make([]EdgeElement, 0, len(sub.Edges)),
	}
	for _, v := range sub.Vertices {
		resp.Nodes = append(resp.Nodes, NodeElement{Data: NodeData{ID: formatID(v)}})
	}
	for _, e := range sub.Edges {
		resp.Edges = append(resp.Edges, EdgeElement{Data: EdgeData{
			Source: formatID(e.From),
			Target: formatID(e.To),
		}})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSearch handles GET /api/graph/search.
//
// Query Parameters:
//
//	id: Vertex ID (required)
//
// Response:
//
//	200 OK: SearchResponse
//	400 Bad Request: id missing or not an integer
//	404 Not Found: Vertex does not exist
//	503 Service Unavailable: No graph loaded
func (h *Handlers) HandleSearch(c *gin.Context) {
	logger := handlerLogger(c, "HandleSearch")

	raw := c.Query("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Please provide a node ID",
			Code:  "MISSING_ID",
		})
		return
	}
	id, ok := parseVertexID(c, raw)
	if !ok {
		return
	}

	neighbors, err := h.svc.Neighbors(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}
	// Vertices exist only as edge endpoints, so no neighbors means no vertex.
	if len(neighbors) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("Node %d not found", id),
			Code:  "NODE_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		NodeID:    id,
		Exists:    true,
		Neighbors: neighbors,
	})
}

// HandleStats handles GET /api/graph/stats.
//
// Response:
//
//	200 OK: StatsResponse
//	503 Service Unavailable: No graph loaded
func (h *Handlers) HandleStats(c *gin.Context) {
	logger := handlerLogger(c, "HandleStats")

	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		NumVertices:      summary.VertexCount,
		NumEdges:         summary.EdgeInsertionCount,
		NumDistinctEdges: summary.DistinctEdgeCount,
		NumCommunities:   summary.Communities,
		Source:           summary.Source,
		LoadedAt:         summary.LoadedAt,
		Generation:       summary.Generation,
	})
}

// HandleNeighbors handles GET /api/graph/neighbors/:id.
//
// An unknown vertex has no neighbors and yields an empty list, not 404.
//
// Response:
//
//	200 OK: NeighborsResponse
//	400 Bad Request: id is not an integer
//	503 Service Unavailable: No graph loaded
func (h *Handlers) HandleNeighbors(c *gin.Context) {
	logger := handlerLogger(c, "HandleNeighbors")

	id, ok := parseVertexID(c, c.Param("id"))
	if !ok {
		return
	}

	neighbors, err := h.svc.Neighbors(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, NeighborsResponse{Neighbors: neighbors})
}

// HandleRecommendations handles GET /api/graph/recommendations/:id.
//
// Query Parameters:
//
//	limit: Maximum suggestions (optional, default 5)
//
// Response:
//
//	200 OK: RecommendationsResponse
//	400 Bad Request: id or limit invalid
//	503 Service Unavailable: No graph loaded
func (h *Handlers) HandleRecommendations(c *gin.Context) {
	logger := handlerLogger(c, "HandleRecommendations")

	id, ok := parseVertexID(c, c.Param("id"))
	if !ok {
		return
	}

	limit := graph.DefaultRecommendationLimit
	if raw, present := c.GetQuery("limit"); present {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  "INVALID_LIMIT",
			})
			return
		}
		limit = n
	}

	recs, err := h.svc.Recommend(c.Request.Context(), id, limit)
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, RecommendationsResponse{
		UserID:          id,
		Recommendations: recs,
	})
}

// HandleShortestPath handles GET /api/graph/shortest-path.
//
// Query Parameters:
//
//	start: Source vertex ID (required)
//	end: Target vertex ID (required)
//
// Response:
//
//	200 OK: ShortestPathResponse (empty path when unreachable)
//	400 Bad Request: start or end missing or not integers
//	503 Service Unavailable: No graph loaded
func (h *Handlers) HandleShortestPath(c *gin.Context) {
	logger := handlerLogger(c, "HandleShortestPath")

	rawStart, rawEnd := c.Query("start"), c.Query("end")
	if rawStart == "" || rawEnd == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Missing start or end parameters",
			Code:  "MISSING_PARAMETERS",
		})
		return
	}
	start, errStart := strconv.ParseInt(rawStart, 10, 64)
	end, errEnd := strconv.ParseInt(rawEnd, 10, 64)
	if errStart != nil || errEnd != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "start and end must be integers",
			Code:  "INVALID_PARAMETERS",
		})
		return
	}

	result, err := h.svc.ShortestPath(c.Request.Context(), graph.VertexID(start), graph.VertexID(end))
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, ShortestPathResponse{
		Path:   result.Path,
		Length: result.Length,
	})
}

// HandleCommunities handles GET /api/graph/communities.
//
// Response:
//
//	200 OK: CommunitiesResponse
//	503 Service Unavailable: No graph loaded
func (h *Handlers) HandleCommunities(c *gin.Context) {
	logger := handlerLogger(c, "HandleCommunities")

	communities, err := h.svc.Communities(c.Request.Context())
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, CommunitiesResponse{
		Communities: communities,
		Count:       len(communities),
	})
}

// HandleReload handles POST /api/graph/reload.
//
// Description:
//
//	Rebuilds the snapshot from the configured source. On failure the
//	previous snapshot keeps serving.
//
// Response:
//
//	200 OK: ReloadResponse
//	409 Conflict: No source configured
//	503 Service Unavailable: Source could not be read
func (h *Handlers) HandleReload(c *gin.Context) {
	logger := handlerLogger(c, "HandleReload")

	result, err := h.svc.Load(c.Request.Context())
	if err != nil {
		writeServiceError(c, logger, err)
		return
	}

	resp := ReloadResponse{
		Source:         result.Source,
		Vertices:       result.Graph.VertexCount(),
		EdgeInsertions: result.Inserted,
		SkippedLines:   result.Skipped,
		DurationMs:     float64(result.Duration.Microseconds()) / 1000,
	}
	if snap, err := h.svc.Snapshot(); err == nil {
		resp.Generation = snap.Generation
	}
	logger.Info("Graph reloaded", "generation", resp.Generation, "vertices", resp.Vertices)
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /api/health.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /api/ready.
//
// Response:
//
//	200 OK: ReadyResponse (Ready=true)
//	503 Service Unavailable: ReadyResponse (Ready=false) before the first load
func (h *Handlers) HandleReady(c *gin.Context) {
	snap, err := h.svc.Snapshot()
	if err != nil {
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{Ready: false})
		return
	}
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:      true,
		Generation: snap.Generation,
		Vertices:   snap.Graph.VertexCount(),
	})
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrGraphNotLoaded):
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Graph is not loaded yet",
			Code:  "GRAPH_NOT_LOADED",
		})
	case errors.Is(err, ErrNoSource):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "No edge-list source is configured",
			Code:  "NO_SOURCE",
		})
	case errors.Is(err, ingest.ErrIngestionUnavailable):
		logger.Error("Source unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Edge-list source could not be read",
			Code:    "SOURCE_UNAVAILABLE",
			Details: err.Error(),
		})
	default:
		logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

// parseVertexID parses raw as a vertex ID, writing a 400 response on failure.
func parseVertexID(c *gin.Context, raw string) (graph.VertexID, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid node ID %q", raw),
			Code:  "INVALID_ID",
		})
		return 0, false
	}
	return graph.VertexID(id), true
}

func formatID(id graph.VertexID) string {
	return strconv.FormatInt(int64(id), 10)
}

func handlerLogger(c *gin.Context, handler string) *slog.Logger {
	return slog.With("request_id", getOrCreateRequestID(c), "handler", handler)
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDKey, requestID)
	c.Header(requestIDHeader, requestID)
	return requestID
}
