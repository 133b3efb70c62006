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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// ServiceName labels server spans. Default: "socialgraph".
	ServiceName string

	// SampleLimit is the default vertex count for GET /api/graph.
	SampleLimit int

	// RateLimitRPS and RateLimitBurst configure the global limiter on /api.
	// RateLimitRPS <= 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int

	// MetricsHandler serves GET /metrics. Default: promhttp.Handler().
	MetricsHandler http.Handler

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger
}

// NewRouter builds the gin engine serving the API and /metrics.
func NewRouter(svc *Service, opts RouterOptions) *gin.Engine {
	if opts.ServiceName == "" {
		opts.ServiceName = "socialgraph"
	}
	if opts.MetricsHandler == nil {
		opts.MetricsHandler = promhttp.Handler()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(RequestLogMiddleware(opts.Logger))

	router.GET("/metrics", gin.WrapH(opts.MetricsHandler))

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst))
	RegisterRoutes(api, NewHandlers(svc).WithSampleLimit(opts.SampleLimit))

	return router
}

// WithCORS wraps h so browsers on origins may call the API.
//
// An empty origins list returns h unchanged.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(h)
}
