// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io"
	"log/slog"

	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/config"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/telemetry"
	"github.com/spf13/cobra"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "socialgraph",
		Short: "Serve and query an in-memory social graph",
		Long: `socialgraph builds an undirected friendship graph from an edge list and
answers adjacency, shortest-path, friend-recommendation and community queries,
either one-shot from the command line or over an HTTP API.

Edge-list format:
  One edge per line, two whitespace-separated integer user IDs.
  Lines that do not match are skipped.

Configuration:
  Defaults, then --config FILE (.yaml, .yml or .toml), then environment
  (SOCIALGRAPH_SOURCE, SOCIALGRAPH_ADDR, SOCIALGRAPH_LOG_LEVEL), then flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				_ = a.logCloser.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(a),
		newStatsCmd(a),
		newNeighborsCmd(a),
		newPathCmd(a),
		newRecommendCmd(a),
		newCommunitiesCmd(a),
	)
	return rootCmd
}

// setup loads configuration and installs the process logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	a.logger, a.logCloser = telemetry.NewLogger(telemetry.LogOptions{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Writer:     cmd.ErrOrStderr(),
	})
	slog.SetDefault(a.logger)
	return nil
}
