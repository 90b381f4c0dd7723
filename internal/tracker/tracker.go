// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/metrics"
	"github.com/pulselog/pulselog/internal/models"
)

// AlertLevel is the severity of a threshold alert.
type AlertLevel string

const (
	// AlertWarning fires when a source crosses the warning threshold.
	AlertWarning AlertLevel = "warning"
	// AlertCritical fires when a source crosses the critical threshold.
	AlertCritical AlertLevel = "critical"
)

// UnknownFingerprint substitutes for a missing client fingerprint so that
// failures from the same address still aggregate under one window.
const UnknownFingerprint = "unknown"

// alertBuffer bounds the undelivered-alert queue. Alerts beyond the buffer
// are dropped rather than blocking the ingest path.
const alertBuffer = 64

// Alert is a threshold crossing delivered on the tracker's channel.
type Alert struct {
	Level   AlertLevel
	Payload models.AlertPayload
}

// window is the per-source failure state. A window starts at the first
// failure and all subsequent failures inside the configured duration count
// against it; the first failure after expiry starts a fresh window.
type window struct {
	firstFailure time.Time
	count        int
	lastAlert    AlertLevel
}

// FailureTracker counts authentication failures per source inside a sliding
// window and emits at most one warning and one critical alert per window.
// All methods are safe for concurrent use.
type FailureTracker struct {
	cfg   config.TrackerConfig
	clock func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	alerts chan Alert
}

// NewFailureTracker builds a tracker from the given thresholds. Zero or
// negative config fields fall back to the package defaults.
func NewFailureTracker(cfg config.TrackerConfig) *FailureTracker {
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	if cfg.WarningThreshold <= 0 {
		cfg.WarningThreshold = 3
	}
	if cfg.CriticalThreshold <= cfg.WarningThreshold {
		cfg.CriticalThreshold = cfg.WarningThreshold + 7
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &FailureTracker{
		cfg:     cfg,
		clock:   time.Now,
		windows: make(map[string]*window),
		alerts:  make(chan Alert, alertBuffer),
	}
}

// Alerts returns the channel threshold alerts are delivered on. The channel
// is never closed; consumers stop by cancelling their own context.
func (t *FailureTracker) Alerts() <-chan Alert {
	return t.alerts
}

// TrackFailure records one authentication failure for the given source.
// Crossing the warning or critical threshold emits an alert; each level
// fires at most once per window and a window never moves back down a level.
func (t *FailureTracker) TrackFailure(ipAddress, fingerprint string) {
	if fingerprint == "" {
		fingerprint = UnknownFingerprint
	}
	key := ipAddress + ":" + fingerprint
	now := t.clock().UTC()

	metrics.AuthFailuresTrackedTotal.Inc()

	t.mu.Lock()
	w, ok := t.windows[key]
	if !ok || now.Sub(w.firstFailure) >= t.cfg.Window {
		w = &window{firstFailure: now}
		t.windows[key] = w
	}
	w.count++
	count := w.count

	var fire AlertLevel
	switch {
	case count >= t.cfg.CriticalThreshold && w.lastAlert != AlertCritical:
		w.lastAlert = AlertCritical
		fire = AlertCritical
	case count >= t.cfg.WarningThreshold && w.lastAlert == "":
		w.lastAlert = AlertWarning
		fire = AlertWarning
	}
	metrics.TrackerEntries.Set(float64(len(t.windows)))
	t.mu.Unlock()

	if fire == "" {
		return
	}

	alert := Alert{
		Level: fire,
		Payload: models.AlertPayload{
			IPAddress:    ipAddress,
			Fingerprint:  fingerprint,
			FailureCount: count,
			Timestamp:    now.Format(time.RFC3339),
		},
	}
	metrics.AlertsFiredTotal.WithLabelValues(string(fire)).Inc()

	select {
	case t.alerts <- alert:
	default:
		logging.Warn().
			Str("ip_address", ipAddress).
			Str("level", string(fire)).
			Msg("Alert queue full, dropping threshold alert")
	}
}

// FailureCount returns the live failure count for the given source. An
// expired window is evicted and reported as zero.
func (t *FailureTracker) FailureCount(ipAddress, fingerprint string) int {
	if fingerprint == "" {
		fingerprint = UnknownFingerprint
	}
	key := ipAddress + ":" + fingerprint

	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[key]
	if !ok {
		return 0
	}
	if t.clock().UTC().Sub(w.firstFailure) >= t.cfg.Window {
		delete(t.windows, key)
		metrics.TrackerEntries.Set(float64(len(t.windows)))
		return 0
	}
	return w.count
}

// Serve runs the periodic sweep until the context is cancelled. It
// satisfies suture.Service.
func (t *FailureTracker) Serve(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.SweepInterval)
	defer ticker.Stop()

	logging.Debug().
		Dur("interval", t.cfg.SweepInterval).
		Msg("Failure tracker sweep started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.sweep()
		}
	}
}

// sweep evicts every expired window.
func (t *FailureTracker) sweep() {
	now := t.clock().UTC()

	t.mu.Lock()
	evicted := 0
	for key, w := range t.windows {
		if now.Sub(w.firstFailure) >= t.cfg.Window {
			delete(t.windows, key)
			evicted++
		}
	}
	remaining := len(t.windows)
	metrics.TrackerEntries.Set(float64(remaining))
	t.mu.Unlock()

	if evicted > 0 {
		logging.Debug().
			Int("evicted", evicted).
			Int("remaining", remaining).
			Msg("Failure tracker sweep evicted expired windows")
	}
}

// String identifies the tracker in supervisor logs.
func (t *FailureTracker) String() string {
	return "failure-tracker"
}
