// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrNilContext is returned by Init when called with a nil context.
	ErrNilContext = errors.New("nil context")

	// ErrUnknownExporter is returned when an exporter name is not recognized.
	ErrUnknownExporter = errors.New("unknown exporter type")
)

// exporterNone disables a signal and keeps the global no-op provider.
const exporterNone = "none"

type spanExporterFactory func(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error)

// metricReaderFactory returns the reader and, for pull exporters, the HTTP
// handler that serves it.
type metricReaderFactory func(cfg config.TelemetryConfig) (sdkmetric.Reader, http.Handler, error)

var spanExporters = map[string]spanExporterFactory{
	"otlp": func(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	},
	"stdout": func(context.Context, config.TelemetryConfig) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	},
}

var metricReaders = map[string]metricReaderFactory{
	"prometheus": newPrometheusReader,
	"stdout": func(config.TelemetryConfig) (sdkmetric.Reader, http.Handler, error) {
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, err
		}
		return sdkmetric.NewPeriodicReader(exporter), nil, nil
	},
}

// newPrometheusReader exports OTel instruments to a private registry and
// serves it together with the default registry, where the ingest package
// registers its promauto collectors.
func newPrometheusReader(config.TelemetryConfig) (sdkmetric.Reader, http.Handler, error) {
	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}
	handler := promhttp.HandlerFor(
		prometheus.Gatherers{registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)
	return exporter, handler, nil
}

// Provider owns the tracer and meter providers installed by Init.
//
// Thread Safety: Safe for concurrent use. Shutdown must be called once.
type Provider struct {
	shutdowns []func(context.Context) error
	metrics   http.Handler
}

// Init installs global tracer and meter providers for cfg.
//
// Description:
//
//	Builds one resource describing the service and hands it to the trace
//	and metric pipelines selected by cfg.TraceExporter and
//	cfg.MetricExporter. "none" leaves the global no-op provider for that
//	signal in place. If the metric pipeline fails, the already started
//	trace pipeline is shut down before returning.
//
// Inputs:
//
//	ctx - Context for exporter connections. Must not be nil.
//	cfg - The validated telemetry section of the service config.
//	version - The service.version resource attribute.
//
// Outputs:
//
//	*Provider - Flushes exporters on Shutdown.
//	error - ErrNilContext, or wraps ErrUnknownExporter / exporter errors.
func Init(ctx context.Context, cfg config.TelemetryConfig, version string) (*Provider, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", version),
		attribute.String("deployment.environment", cfg.Environment),
	)
	p := &Provider{}

	if cfg.TraceExporter != exporterNone {
		factory, ok := spanExporters[cfg.TraceExporter]
		if !ok {
			return nil, fmt.Errorf("init tracer: %w: %s", ErrUnknownExporter, cfg.TraceExporter)
		}
		exporter, err := factory(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %s exporter: %w", cfg.TraceExporter, err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		)
		otel.SetTracerProvider(tp)
		p.shutdowns = append(p.shutdowns, tp.Shutdown)
	}

	if cfg.MetricExporter != exporterNone {
		factory, ok := metricReaders[cfg.MetricExporter]
		if !ok {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("init meter: %w: %s", ErrUnknownExporter, cfg.MetricExporter)
		}
		reader, handler, err := factory(cfg)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("init meter: %s exporter: %w", cfg.MetricExporter, err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		otel.SetMeterProvider(mp)
		p.shutdowns = append(p.shutdowns, mp.Shutdown)
		p.metrics = handler
	}

	return p, nil
}

// MetricsHandler serves /metrics. Nil unless the Prometheus exporter is active.
func (p *Provider) MetricsHandler() http.Handler {
	return p.metrics
}

// Shutdown flushes and stops the pipelines in reverse start order.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range slices.Backward(p.shutdowns) {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdowns = nil
	return errors.Join(errs...)
}
