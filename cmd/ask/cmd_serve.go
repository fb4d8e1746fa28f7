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
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianAsk/cmd/ask/config"
	"github.com/AleutianAI/AleutianAsk/pkg/telemetry"
	"github.com/AleutianAI/AleutianAsk/services/chatsession"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/answering"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/handlers"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/observability"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/routes"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// sessionDefaults holds the config new sessions are created from. The config
// watcher swaps it; sessions already running keep their settings.
type sessionDefaults struct {
	cfg    atomic.Pointer[config.AskConfig]
	client atomic.Pointer[answering.Client]
}

func newSessionDefaults(cfg config.AskConfig) *sessionDefaults {
	d := &sessionDefaults{}
	d.store(cfg)
	return d
}

func (d *sessionDefaults) store(cfg config.AskConfig) {
	d.cfg.Store(&cfg)
	d.client.Store(newAnsweringClient(cfg))
}

// reload applies the command-line overrides to a freshly loaded config and
// stores it. A config the overrides make invalid is rejected and the current
// defaults stay in place.
func (d *sessionDefaults) reload(cfg config.AskConfig) error {
	if err := applyFlagOverrides(&cfg); err != nil {
		return err
	}
	d.store(cfg)
	return nil
}

// factory returns a SessionFactory reading the current defaults.
func (d *sessionDefaults) factory(metrics chatsession.MetricsRecorder, logger *slog.Logger) handlers.SessionFactory {
	return func(configure func(*chatsession.Settings)) *chatsession.Session {
		cfg := *d.cfg.Load()
		settings := cfg.SessionSettings()
		if configure != nil {
			configure(&settings)
		}
		return chatsession.NewSession(d.client.Load(), sessionConfig(cfg, &settings, metrics, logger))
	}
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, appConfig.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer flushTelemetry(shutdown)

	gin.SetMode(gin.ReleaseMode)
	logger := slog.Default()
	metrics := observability.NewSessionMetrics(prometheus.DefaultRegisterer)
	defaults := newSessionDefaults(appConfig)
	store := handlers.NewSessionStore(defaults.factory(metrics, logger))
	router := routes.NewRouter(store, metrics, promhttp.Handler())

	return serve(ctx, appConfig.Server.Addr, router, func(ctx context.Context) error {
		return config.Watch(ctx, configPath, func(cfg config.AskConfig) {
			if err := defaults.reload(cfg); err != nil {
				logger.Warn("config reload rejected", "error", err)
				return
			}
			logger.Info("session defaults reloaded",
				"base_url", cfg.Answering.BaseURL,
				"retrieve_count", cfg.Settings.RetrieveCount)
		})
	})
}

// serve runs the HTTP server and the watcher until ctx is done or either
// fails, then shuts the server down.
func serve(ctx context.Context, addr string, handler http.Handler, watch func(context.Context) error) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("session API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	})
	if watch != nil {
		g.Go(func() error {
			if err := watch(gctx); err != nil {
				// The API keeps serving with the defaults it started with.
				slog.Warn("config watcher stopped", "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down session API")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
