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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the social graph API with the router.
//
// Description:
//
//	Registers all /api/* endpoints with the given Gin router group. The
//	group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /api)
//	handlers - The handlers instance
//
// Graph Endpoints:
//
//	GET  /api/graph - Sampled subgraph as Cytoscape elements
//	GET  /api/graph/search?id= - Vertex lookup with neighbors
//	GET  /api/graph/stats - Vertex, edge and community counts
//	GET  /api/graph/neighbors/:id - Neighbor list
//	GET  /api/graph/recommendations/:id - Friend suggestions
//	GET  /api/graph/shortest-path?start=&end= - Minimal-hop path
//	GET  /api/graph/communities - Connected components
//	POST /api/graph/reload - Rebuild from the configured source
//
// Health Endpoints:
//
//	GET /api/health - Liveness
//	GET /api/ready - Readiness (a graph is loaded)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	g := rg.Group("/graph")
	{
		g.GET("", handlers.HandleGraph)
		g.GET("/search", handlers.HandleSearch)
		g.GET("/stats", handlers.HandleStats)
		g.GET("/neighbors/:id", handlers.HandleNeighbors)
		g.GET("/recommendations/:id", handlers.HandleRecommendations)
		g.GET("/shortest-path", handlers.HandleShortestPath)
		g.GET("/communities", handlers.HandleCommunities)
		g.POST("/reload", handlers.HandleReload)
	}

	rg.GET("/health", handlers.HandleHealth)
	rg.GET("/ready", handlers.HandleReady)
}
