// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package metrics exposes Prometheus instrumentation for the pipeline:
// store writes and queries, threshold alerts, websocket fan-out, and the
// HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store metrics
	LogsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulselog_logs_written_total",
			Help: "Total number of event records persisted, by event type",
		},
		[]string{"event_type"},
	)

	LogWriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulselog_log_write_errors_total",
			Help: "Total number of event record writes dropped due to store errors",
		},
	)

	LogsDroppedUnavailableTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulselog_logs_dropped_unavailable_total",
			Help: "Total number of event records dropped because the store was unavailable",
		},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulselog_store_query_duration_seconds",
			Help:    "Duration of backing-store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreQueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulselog_store_query_errors_total",
			Help: "Total number of backing-store query errors",
		},
		[]string{"operation"},
	)

	StoreConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulselog_store_connected",
			Help: "Whether the backing store is currently connected (1) or degraded (0)",
		},
	)

	// Tracker metrics
	AuthFailuresTrackedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulselog_auth_failures_tracked_total",
			Help: "Total number of authentication failures fed to the sliding-window tracker",
		},
	)

	AlertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulselog_alerts_fired_total",
			Help: "Total number of threshold alerts fired, by level",
		},
		[]string{"level"},
	)

	TrackerEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulselog_tracker_entries",
			Help: "Current number of live failure-tracker windows",
		},
	)

	// WebSocket metrics
	WSClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulselog_ws_clients_connected",
			Help: "Current number of connected websocket subscribers",
		},
	)

	WSBroadcastsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulselog_ws_broadcasts_dropped_total",
			Help: "Total number of broadcasts dropped due to a full queue, by message type",
		},
		[]string{"message_type"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulselog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulselog_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimitHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulselog_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// ObserveStoreQuery records one store query's duration and error outcome.
func ObserveStoreQuery(operation string, start time.Time, err error) {
	StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreQueryErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// ObserveAPIRequest records one HTTP request.
func ObserveAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetStoreConnected flips the store availability gauge.
func SetStoreConnected(connected bool) {
	if connected {
		StoreConnected.Set(1)
		return
	}
	StoreConnected.Set(0)
}
