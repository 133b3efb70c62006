// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates socialgraph configuration.
//
// Configuration comes from three layers, later layers winning:
//  1. DefaultConfig()
//  2. An optional YAML (.yaml, .yml) or TOML (.toml) file
//  3. SOCIALGRAPH_* environment variables
package config

import (
	"errors"
	"time"
)

// ErrInvalidConfig is returned when a configuration file cannot be parsed
// or the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables that override file values.
const (
	EnvSource      = "SOCIALGRAPH_SOURCE"
	EnvAddress     = "SOCIALGRAPH_ADDR"
	EnvLogLevel    = "SOCIALGRAPH_LOG_LEVEL"
	EnvEnvironment = "SOCIALGRAPH_ENV"

	// Standard OpenTelemetry exporter variables.
	EnvTracesExporter  = "OTEL_TRACES_EXPORTER"
	EnvMetricsExporter = "OTEL_METRICS_EXPORTER"
	EnvOTLPEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the complete socialgraph configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source" toml:"source"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

// SourceConfig describes where the edge list comes from.
type SourceConfig struct {
	// Path is the edge-list file. Required by `serve`.
	Path string `yaml:"path" toml:"path"`

	// Watch rebuilds the graph when Path changes.
	Watch bool `yaml:"watch" toml:"watch"`

	// DebounceMs is the watcher debounce window in milliseconds.
	DebounceMs int `yaml:"debounce_ms" toml:"debounce_ms" validate:"gte=0"`
}

// Debounce returns DebounceMs as a duration.
func (s SourceConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Address is the listen address, e.g. ":5000".
	Address string `yaml:"address" toml:"address" validate:"required"`

	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins" validate:"dive,required"`

	// RateLimitRPS is the sustained request rate. 0 disables rate limiting.
	RateLimitRPS float64 `yaml:"rate_limit_rps" toml:"rate_limit_rps" validate:"gte=0"`

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int `yaml:"rate_limit_burst" toml:"rate_limit_burst" validate:"gte=0"`

	// SampleLimit is the default vertex count for GET /api/graph.
	SampleLimit int `yaml:"sample_limit" toml:"sample_limit" validate:"gt=0"`

	// CacheSize bounds the per-snapshot recommendation cache.
	CacheSize int `yaml:"cache_size" toml:"cache_size" validate:"gt=0"`

	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `yaml:"shutdown_timeout_sec" toml:"shutdown_timeout_sec" validate:"gt=0"`

	// Debug enables gin debug mode and request logging.
	Debug bool `yaml:"debug" toml:"debug"`
}

// ShutdownTimeout returns ShutdownTimeoutSec as a duration.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

// LogConfig configures the slog logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`

	// Format is text or json.
	Format string `yaml:"format" toml:"format" validate:"oneof=text json"`

	// File, when set, receives logs with size-based rotation instead of stderr.
	File string `yaml:"file" toml:"file"`

	// MaxSizeMB is the rotation threshold.
	MaxSizeMB int `yaml:"max_size_mb" toml:"max_size_mb" validate:"gte=0"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups" toml:"max_backups" validate:"gte=0"`
}

// TelemetryConfig selects trace and metric exporters.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" toml:"service_name" validate:"required"`
	Environment    string `yaml:"environment" toml:"environment"`
	TraceExporter  string `yaml:"trace_exporter" toml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" toml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" toml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure" toml:"otlp_insecure"`
}

// DefaultConfig returns the built-in defaults.
//
// The defaults match the original development setup: API on :5000 and the
// Vite dev server origins allowed through CORS.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			DebounceMs: 500,
		},
		Server: ServerConfig{
			Address:            ":5000",
			CORSOrigins:        []string{"http://localhost:5173", "http://127.0.0.1:5173"},
			RateLimitRPS:       0,
			RateLimitBurst:     20,
			SampleLimit:        50,
			CacheSize:          1024,
			ShutdownTimeoutSec: 10,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "socialgraph",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
		},
	}
}
