// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics
var (
	ingestLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialgraph_ingest_lines_total",
		Help: "Edge-list lines read, by outcome",
	}, []string{"outcome"})

	ingestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "socialgraph_ingest_duration_seconds",
		Help:    "Time to build a graph from an edge list",
		Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
	})

	ingestFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialgraph_ingest_failures_total",
		Help: "Builds that failed because the source could not be opened or read",
	})

	graphVertices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialgraph_graph_vertices",
		Help: "Vertex count of the most recently built graph",
	})

	graphEdgeInsertions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialgraph_graph_edge_insertions",
		Help: "Edge insertion count of the most recently built graph",
	})
)

func recordLoad(r *LoadResult) {
	ingestLines.WithLabelValues("accepted").Add(float64(r.Inserted))
	ingestLines.WithLabelValues("skipped").Add(float64(r.Skipped))
	ingestDuration.Observe(r.Duration.Seconds())
	graphVertices.Set(float64(r.Graph.VertexCount()))
	graphEdgeInsertions.Set(float64(r.Graph.EdgeInsertionCount()))
}
