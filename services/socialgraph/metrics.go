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
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "socialgraph"

var meter = otel.Meter(instrumentationName)

var (
	queryLatency metric.Float64Histogram
	queryTotal   metric.Int64Counter
	reloadTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		queryLatency, err = meter.Float64Histogram(
			"socialgraph_query_duration_seconds",
			metric.WithDescription("Duration of graph queries"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		queryTotal, err = meter.Int64Counter(
			"socialgraph_query_total",
			metric.WithDescription("Graph queries by type and cache outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		reloadTotal, err = meter.Int64Counter(
			"socialgraph_reload_total",
			metric.WithDescription("Snapshot reload attempts"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordQuery(ctx context.Context, query string, start time.Time, cached bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("query", query),
		attribute.Bool("cached", cached),
	)
	queryLatency.Record(ctx, time.Since(start).Seconds(), attrs)
	queryTotal.Add(ctx, 1, attrs)
}

func recordReload(ctx context.Context, trigger string, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	reloadTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.Bool("success", success),
	))
}
