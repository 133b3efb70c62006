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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(svc *Service) *gin.Engine {
	router := gin.New()
	api := router.Group("/api")
	RegisterRoutes(api, NewHandlers(svc))
	return router
}

func loadedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	svc := newTestService(t, "")
	svc.SetGraph(socialFixture(), "fixture")
	return setupTestRouter(svc)
}

func doRequest(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestHandlers_HandleHealth(t *testing.T) {
	router := setupTestRouter(newTestService(t, ""))

	w := doRequest(router, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
}

func TestHandlers_HandleReady(t *testing.T) {
	svc := newTestService(t, "")
	router := setupTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
	assert.False(t, decode[ReadyResponse](t, w).Ready)

	svc.SetGraph(socialFixture(), "fixture")
	w = doRequest(router, http.MethodGet, "/api/ready")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ReadyResponse](t, w)
	assert.True(t, resp.Ready)
	assert.Equal(t, uint64(1), resp.Generation)
	assert.Equal(t, 7, resp.Vertices)
}

func TestHandlers_GraphNotLoaded(t *testing.T) {
	router := setupTestRouter(newTestService(t, ""))

	for _, target := range []string{
		"/api/graph",
		"/api/graph/search?id=1",
		"/api/graph/stats",
		"/api/graph/neighbors/1",
		"/api/graph/recommendations/1",
		"/api/graph/shortest-path?start=1&end=2",
		"/api/graph/communities",
	} {
		t.Run(target, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, target)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			assert.Equal(t, "GRAPH_NOT_LOADED", decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestHandlers_HandleGraph(t *testing.T) {
	router := loadedRouter(t)

	t.Run("default limit covers the fixture", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/graph")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ElementsResponse](t, w)
		assert.Len(t, resp.Nodes, 7)
		assert.Len(t, resp.Edges, 6)
	})

	t.Run("limit", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/graph?limit=3")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ElementsResponse](t, w)

		ids := make([]string, 0, len(resp.Nodes))
		for _, n := range resp.Nodes {
			ids = append(ids, n.Data.ID)
		}
		assert.Equal(t, []string{"1", "2", "3"}, ids)
		assert.Equal(t, []EdgeElement{
			{Data: EdgeData{Source: "1", Target: "2"}},
			{Data: EdgeData{Source: "2", Target: "3"}},
		}, resp.Edges)
	})

	for _, raw := range []string{"0", "-4", "many"} {
		t.Run("invalid limit "+raw, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/api/graph?limit="+raw)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_LIMIT", decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestHandlers_HandleSearch(t *testing.T) {
	router := loadedRouter(t)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantErr  string
	}{
		{"missing id", "/api/graph/search", http.StatusBadRequest, "MISSING_ID"},
		{"non-numeric id", "/api/graph/search?id=abc", http.StatusBadRequest, "INVALID_ID"},
		{"unknown id", "/api/graph/search?id=99", http.StatusNotFound, "NODE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.target)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, w).Code)
		})
	}

	t.Run("found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/graph/search?id=4")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[SearchResponse](t, w)
		assert.Equal(t, graph.VertexID(4), resp.NodeID)
		assert.True(t, resp.Exists)
		assert.Equal(t, []graph.VertexID{1, 5}, resp.Neighbors)
	})
}

func TestHandlers_HandleStats(t *testing.T) {
	router := loadedRouter(t)

	w := doRequest(router, http.MethodGet, "/api/graph/stats")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[StatsResponse](t, w)
	assert.Equal(t, 7, resp.NumVertices)
	assert.Equal(t, 7, resp.NumEdges)
	assert.Equal(t, 6, resp.NumDistinctEdges)
	assert.Equal(t, 2, resp.NumCommunities)
	assert.Equal(t, "fixture", resp.Source)
	assert.Equal(t, uint64(1), resp.Generation)
}

func TestHandlers_HandleNeighbors(t *testing.T) {
	router := loadedRouter(t)

	w := doRequest(router, http.MethodGet, "/api/graph/neighbors/2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []graph.VertexID{1, 3}, decode[NeighborsResponse](t, w).Neighbors)

	w = doRequest(router, http.MethodGet, "/api/graph/neighbors/99")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"neighbors":[]}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/graph/neighbors/x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_HandleRecommendations(t *testing.T) {
	router := loadedRouter(t)

	w := doRequest(router, http.MethodGet, "/api/graph/recommendations/1")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[RecommendationsResponse](t, w)
	assert.Equal(t, graph.VertexID(1), resp.UserID)
	assert.Equal(t, []graph.Recommendation{
		{ID: 3, Score: 1, MutualFriends: []graph.VertexID{2}},
		{ID: 5, Score: 1, MutualFriends: []graph.VertexID{4}},
	}, resp.Recommendations)

	w = doRequest(router, http.MethodGet, "/api/graph/recommendations/1?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[RecommendationsResponse](t, w).Recommendations, 1)

	w = doRequest(router, http.MethodGet, "/api/graph/recommendations/1?limit=0")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[RecommendationsResponse](t, w).Recommendations)

	w = doRequest(router, http.MethodGet, "/api/graph/recommendations/1?limit=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_LIMIT", decode[ErrorResponse](t, w).Code)
}

func TestHandlers_HandleShortestPath(t *testing.T) {
	router := loadedRouter(t)

	t.Run("reachable", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/graph/shortest-path?start=1&end=5")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ShortestPathResponse](t, w)
		assert.Equal(t, []graph.VertexID{1, 4, 5}, resp.Path)
		assert.Equal(t, 2, resp.Length)
	})

	t.Run("unreachable", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/graph/shortest-path?start=1&end=11")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ShortestPathResponse](t, w)
		assert.Empty(t, resp.Path)
		assert.Equal(t, -1, resp.Length)
	})

	t.Run("missing", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/graph/shortest-path?start=1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_PARAMETERS", decode[ErrorResponse](t, w).Code)
	})

	t.Run("invalid", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/graph/shortest-path?start=1&end=two")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_PARAMETERS", decode[ErrorResponse](t, w).Code)
	})
}

func TestHandlers_HandleCommunities(t *testing.T) {
	router := loadedRouter(t)

	w := doRequest(router, http.MethodGet, "/api/graph/communities")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[CommunitiesResponse](t, w)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, [][]graph.VertexID{{1, 2, 4, 3, 5}, {10, 11}}, resp.Communities)
}

func TestHandlers_HandleReload(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		router := setupTestRouter(newTestService(t, ""))
		w := doRequest(router, http.MethodPost, "/api/graph/reload")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "NO_SOURCE", decode[ErrorResponse](t, w).Code)
	})

	t.Run("reloads and keeps serving after failure", func(t *testing.T) {
		path := writeEdges(t, "1 2\n2 3\nnoise\n")
		router := setupTestRouter(newTestService(t, path))

		w := doRequest(router, http.MethodPost, "/api/graph/reload")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ReloadResponse](t, w)
		assert.Equal(t, path, resp.Source)
		assert.Equal(t, uint64(1), resp.Generation)
		assert.Equal(t, 3, resp.Vertices)
		assert.Equal(t, 2, resp.EdgeInsertions)
		assert.Equal(t, 1, resp.SkippedLines)

		require.NoError(t, os.Remove(path))
		w = doRequest(router, http.MethodPost, "/api/graph/reload")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "SOURCE_UNAVAILABLE", decode[ErrorResponse](t, w).Code)

		w = doRequest(router, http.MethodGet, "/api/graph/stats")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, decode[StatsResponse](t, w).NumVertices)
	})
}

func TestRequestID(t *testing.T) {
	svc := newTestService(t, "")
	router := NewRouter(svc, RouterOptions{Logger: quietLogger()})

	w := doRequest(router, http.MethodGet, "/api/health")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}

func TestRateLimitMiddleware(t *testing.T) {
	svc := newTestService(t, "")
	router := NewRouter(svc, RouterOptions{
		RateLimitRPS:   0.001,
		RateLimitBurst: 2,
		Logger:         quietLogger(),
	})

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/api/health").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/api/health").Code)

	w := doRequest(router, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decode[ErrorResponse](t, w).Code)

	// /metrics sits outside the limited group.
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/metrics").Code)
}

func TestWithCORS(t *testing.T) {
	svc := newTestService(t, "")
	handler := WithCORS(NewRouter(svc, RouterOptions{Logger: quietLogger()}), []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
