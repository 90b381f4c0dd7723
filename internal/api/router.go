// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulselog/pulselog/internal/auth"
	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/metrics"
	"github.com/pulselog/pulselog/internal/middleware"
)

// Setup builds the full route tree.
//
// Layout:
//
//	POST /api/v1/logs         ingest (any authenticated caller)
//	GET  /api/v1/logs         query (min stream role)
//	GET  /api/v1/logs/errors  recent errors (min stream role)
//	GET  /api/v1/stats        rollups (min stream role)
//	POST /api/v1/query        raw read-only query (superadmin)
//	GET  /api/v1/health       liveness, unauthenticated
//	GET  /ws                  stream subscription (min stream role)
//	GET  /metrics             Prometheus scrape endpoint
func (h *Handler) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.Security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	minRole := h.cfg.Security.MinStreamRole

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.rateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Post("/logs", h.IngestLog)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(minRole))
				r.Get("/logs", h.Logs)
				r.Get("/logs/errors", h.RecentErrors)
				r.Get("/stats", h.Stats)
			})

			r.With(h.RequireRole(auth.RoleSuperadmin)).Post("/query", h.RawQuery)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Use(h.RequireRole(minRole))
		r.Get("/ws", h.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// rateLimit builds the per-IP limiter. The on-limit handler feeds the
// rate_limit_alert stream message before rejecting the request.
func (h *Handler) rateLimit() func(http.Handler) http.Handler {
	if h.cfg.Server.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		h.cfg.Server.RateLimitRequests,
		h.cfg.Server.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RateLimitHitsTotal.Inc()
			logging.Warn().
				Str("remote_addr", r.RemoteAddr).
				Str("path", r.URL.Path).
				Msg("Rate limit exceeded")
			h.hub.EmitRateLimitAlert(r.RemoteAddr, r.URL.Path)
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
		}),
	)
}
