// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the effective configuration.
//
// Description:
//
//	Starts from DefaultConfig, overlays the file at path when path is
//	non-empty, applies SOCIALGRAPH_* and OTEL_* environment overrides, and
//	validates the result. Keys absent from the file keep their defaults.
//
// Inputs:
//
//	path - Config file path; "" means defaults plus environment only.
//
// Outputs:
//
//	Config - The merged configuration.
//	error - Wraps ErrInvalidConfig on parse or validation failure, or the
//	        read error if the file could not be read.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config extension %q", ErrInvalidConfig, ext)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvSource); v != "" {
		cfg.Source.Path = v
	}
	if v := os.Getenv(EnvAddress); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvEnvironment); v != "" {
		cfg.Telemetry.Environment = v
	}
	if v := os.Getenv(EnvTracesExporter); v != "" {
		cfg.Telemetry.TraceExporter = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMetricsExporter); v != "" {
		cfg.Telemetry.MetricExporter = strings.ToLower(v)
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
}
