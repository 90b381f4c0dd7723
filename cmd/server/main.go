// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package main is the entry point for the Pulselog server.
//
// Pulselog is a centralized event-logging pipeline with real-time security
// alerting. Applications POST event records to the ingestion API; records
// are persisted to DuckDB, streamed to websocket subscribers, and failed
// authentication attempts are tracked per source so brute-force patterns
// raise warning and critical alerts.
//
// # Application Architecture
//
// The server wires its components explicitly, in dependency order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml, PULSELOG_ env)
//  2. Event store: DuckDB via database/sql; absence means degraded mode, not failure
//  3. Failure tracker: sliding-window counters keyed by ip:fingerprint
//  4. WebSocket hub: broadcast and errors-only rooms for live subscribers
//  5. Alert forwarder: drains tracker alerts into the hub
//  6. Authentication: JWT (HS256); an empty secret disables auth entirely
//  7. HTTP server: chi router with CORS, rate limiting, and Prometheus metrics
//
// All long-running components run under a suture supervision tree and are
// restarted with backoff if they crash.
//
// # Degraded Mode
//
// When the store is disabled or unreachable the server keeps running:
// queries return empty results, ingestion drops records, and failed-auth
// tracking plus alert delivery continue unaffected.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the hub closes its clients, and the store is closed
// last.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulselog/pulselog/internal/api"
	"github.com/pulselog/pulselog/internal/auth"
	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/service"
	"github.com/pulselog/pulselog/internal/supervisor"
	"github.com/pulselog/pulselog/internal/tracker"
	"github.com/pulselog/pulselog/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("app_id", cfg.AppID).
		Str("listen_addr", cfg.Server.ListenAddr).
		Bool("store_enabled", cfg.Store.Enabled).
		Str("min_stream_role", cfg.Security.MinStreamRole).
		Msg("Starting Pulselog")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event store. Initialization failure is degraded mode, not fatal:
	// ingestion and alerting keep working without persistence.
	store := database.NewManager(cfg)
	if store.Initialize(ctx) {
		logging.Info().Msg("Event store initialized")
	} else {
		logging.Warn().Msg("Event store unavailable, running in degraded mode")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event store")
		}
	}()

	// Failed-auth tracking and real-time delivery.
	failureTracker := tracker.NewFailureTracker(cfg.Tracker)
	hub := websocket.NewHub()
	forwarder := service.NewAlertForwarder(failureTracker, hub)

	svc := service.New(cfg, store, hub, failureTracker)

	// An empty JWT secret disables authentication; every request is
	// treated as anonymous with full access. Meant for development only.
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Warn().Err(err).Msg("Authentication disabled")
		jwtManager = nil
	}

	handler := api.NewHandler(cfg, svc, hub, jwtManager)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      handler.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	// Stream layer: hub, tracker sweep, alert forwarder.
	tree.AddStreamService(supervisor.NewHubService(hub))
	tree.AddStreamService(failureTracker)
	tree.AddStreamService(forwarder)

	// API layer.
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel; it closes once the supervisor has stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Pulselog stopped gracefully")
}
