// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing, metrics and slog logging
// for the socialgraph service.
//
// # Traces
//
// Spans are exported via OTLP/gRPC or stdout, or dropped entirely with
// the "none" exporter. Graph construction and every query get a span.
//
// # Metrics
//
// The default metric exporter is Prometheus. Each Provider exports OTel
// instruments to its own registry; Provider.MetricsHandler gathers it together
// with the default registry, where the ingest package keeps its promauto
// collectors, so a single /metrics endpoint serves both.
//
// # Logging
//
// NewLogger builds a slog.Logger writing text or JSON to stderr, or to a
// size-rotated file. LoggerWithTrace adds trace_id and span_id to a logger
// when the context carries a valid span.
//
// # Usage
//
//	provider, err := telemetry.Init(ctx, cfg.Telemetry, version)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer provider.Shutdown(context.Background())
//
// # Thread Safety
//
// All exported functions are safe for concurrent use after Init() returns.
package telemetry
