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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/config"
	"github.com/mbirochan/Social-Network-Graph/services/socialgraph/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type serveFlags struct {
	source string
	addr   string
	watch  bool
	debug  bool
}

func newServeCmd(a *app) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Build the graph from the configured source and serve the HTTP API.

The server refuses to start if the source cannot be read. With --watch the
graph is rebuilt whenever the source file changes; a failed rebuild keeps the
previous graph serving. SIGINT or SIGTERM shut the server down gracefully.

Examples:
  socialgraph serve --source dataset/facebook_combined.txt
  socialgraph serve --config socialgraph.yaml --watch
  SOCIALGRAPH_ADDR=:8080 socialgraph serve --source edges.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if f.source != "" {
				cfg.Source.Path = f.source
			}
			if f.addr != "" {
				cfg.Server.Address = f.addr
			}
			if f.watch {
				cfg.Source.Watch = true
			}
			if f.debug {
				cfg.Server.Debug = true
			}
			if cfg.Source.Path == "" {
				return fmt.Errorf("%w: no source; pass --source or set %s", config.ErrInvalidConfig, config.EnvSource)
			}
			return serve(cmd.Context(), cfg, a.logger)
		},
	}
	cmd.Flags().StringVar(&f.source, "source", "", "Edge-list file (overrides config)")
	cmd.Flags().StringVar(&f.addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Rebuild when the source file changes")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Enable gin debug mode")
	return cmd
}

// serve runs the API until ctx is canceled or a termination signal arrives.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Init(ctx, cfg.Telemetry, socialgraph.ServiceVersion)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	svc := socialgraph.NewService(socialgraph.ServiceOptions{
		Source:        cfg.Source.Path,
		CacheSize:     cfg.Server.CacheSize,
		WatchDebounce: cfg.Source.Debounce(),
		Logger:        logger,
	})
	defer svc.Close()

	result, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.Source.Watch {
		if err := svc.Watch(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", cfg.Source.Path, err)
		}
	}

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := socialgraph.NewRouter(svc, socialgraph.RouterOptions{
		ServiceName:    cfg.Telemetry.ServiceName,
		SampleLimit:    cfg.Server.SampleLimit,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		MetricsHandler: provider.MetricsHandler(),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           socialgraph.WithCORS(router, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	p := newPrinter(os.Stderr, false)
	p.banner(
		p.render(titleStyle, "socialgraph "+socialgraph.ServiceVersion),
		fmt.Sprintf("listening  %s", cfg.Server.Address),
		fmt.Sprintf("source     %s", cfg.Source.Path),
		fmt.Sprintf("graph      %s vertices, %s edge insertions", count(result.Graph.VertexCount()), count(result.Inserted)),
		fmt.Sprintf("built in   %s, %s lines skipped", result.Duration.Round(time.Millisecond), humanize.Comma(int64(result.Skipped))),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting socialgraph server", slog.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", cfg.Server.Address, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down socialgraph server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
