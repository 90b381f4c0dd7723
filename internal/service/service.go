// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package service

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/metrics"
	"github.com/pulselog/pulselog/internal/models"
	"github.com/pulselog/pulselog/internal/tracker"
)

// Broadcaster is the slice of the stream hub the façade needs. The
// websocket hub satisfies it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastNewLog(entry *models.LogEntry)
	ConnectedCount() int
}

// Service is the pipeline façade. Every method degrades silently: a down
// or absent store yields empty results and dropped writes, never an error
// across this boundary.
//
// All collaborators are injected; any of them may be nil and the façade
// still behaves (nil store means permanent degraded mode, nil hub means
// no stream, nil tracker means no brute-force alerts).
type Service struct {
	cfg     *config.Config
	store   *database.Manager
	hub     Broadcaster
	tracker *tracker.FailureTracker

	// readBreaker trips store reads to fast empty responses while the
	// store is failing, instead of burning the query timeout per call.
	readBreaker *gobreaker.CircuitBreaker[interface{}]
}

// New wires the façade from its collaborators.
func New(cfg *config.Config, store *database.Manager, hub Broadcaster, ft *tracker.FailureTracker) *Service {
	settings := gobreaker.Settings{
		Name:     "store-reads",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Store read breaker state changed")
		},
	}

	return &Service{
		cfg:         cfg,
		store:       store,
		hub:         hub,
		tracker:     ft,
		readBreaker: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// IsAvailable reports whether the backing store is connected.
func (s *Service) IsAvailable() bool {
	return s.store != nil && s.store.IsConnected()
}

// ConnectedSubscribers reports the live stream subscriber count.
func (s *Service) ConnectedSubscribers() int {
	if s.hub == nil {
		return 0
	}
	return s.hub.ConnectedCount()
}

// Log ingests one record. The entry is persisted when the store is up and
// dropped (with a metric) when it is not; a persisted entry is pushed to
// the stream. A failed authentication event always feeds the failure
// tracker, store or no store.
//
// Log never returns an error. The returned entry is nil when nothing was
// persisted.
func (s *Service) Log(ctx context.Context, record *models.LogRecord) *models.LogEntry {
	if record == nil {
		return nil
	}
	if !record.EventType.IsValid() {
		logging.Debug().
			Str("event_type", string(record.EventType)).
			Msg("Dropping record with unknown event type")
		return nil
	}

	entry := s.buildEntry(record)

	// Brute-force tracking must not depend on store availability.
	if entry.EventType == models.EventAuthFailed && !entry.Success && s.tracker != nil {
		s.tracker.TrackFailure(entry.IPAddress, entry.Fingerprint)
	}

	if !s.IsAvailable() {
		metrics.LogsDroppedUnavailableTotal.Inc()
		logging.Debug().
			Str("event_type", string(entry.EventType)).
			Msg("Store unavailable, dropping record")
		return nil
	}

	if err := s.store.InsertLog(ctx, entry); err != nil {
		metrics.LogWriteErrorsTotal.Inc()
		logging.Error().Err(err).
			Str("event_type", string(entry.EventType)).
			Msg("Failed to persist record")
		return nil
	}
	metrics.LogsWrittenTotal.WithLabelValues(string(entry.EventType)).Inc()

	if s.hub != nil {
		s.hub.BroadcastNewLog(entry)
	}
	return entry
}

// buildEntry converts an inbound record into a persisted entry, applying
// the app-id and success defaults.
func (s *Service) buildEntry(record *models.LogRecord) *models.LogEntry {
	appID := record.AppID
	if appID == "" && s.cfg != nil {
		appID = s.cfg.AppID
	}

	return &models.LogEntry{
		EventType:     record.EventType,
		EventSubtype:  record.EventSubtype,
		AppID:         appID,
		UserID:        record.UserID,
		IPAddress:     record.IPAddress,
		Fingerprint:   record.Fingerprint,
		UserAgent:     record.UserAgent,
		RequestMethod: record.RequestMethod,
		RequestPath:   record.RequestPath,
		StatusCode:    record.StatusCode,
		DurationMs:    record.DurationMs,
		Message:       record.Message,
		Metadata:      record.Metadata,
		Success:       record.IsSuccess(),
	}
}

// GetLogs runs a filtered, paginated query. Degraded mode or any query
// failure yields an empty page.
func (s *Service) GetLogs(ctx context.Context, q models.LogQuery) *models.LogPage {
	if !s.IsAvailable() {
		return models.EmptyLogPage()
	}

	result, err := s.readBreaker.Execute(func() (interface{}, error) {
		return s.store.QueryLogs(ctx, q)
	})
	if err != nil {
		logging.Error().Err(err).Msg("Log query failed")
		return models.EmptyLogPage()
	}
	return result.(*models.LogPage)
}

// GetStats returns the hourly and daily rollups. Degraded mode or any
// query failure yields empty buckets.
func (s *Service) GetStats(ctx context.Context, opts models.StatsOptions) *models.Stats {
	if !s.IsAvailable() {
		return models.EmptyStats()
	}

	result, err := s.readBreaker.Execute(func() (interface{}, error) {
		return s.store.QueryStats(ctx, opts)
	})
	if err != nil {
		logging.Error().Err(err).Msg("Stats query failed")
		return models.EmptyStats()
	}
	return result.(*models.Stats)
}

// GetRecentErrors returns the newest failed entries inside the lookback
// window. Degraded mode or any query failure yields an empty slice.
func (s *Service) GetRecentErrors(ctx context.Context, opts models.RecentErrorsOptions) []models.LogEntry {
	if !s.IsAvailable() {
		return []models.LogEntry{}
	}

	result, err := s.readBreaker.Execute(func() (interface{}, error) {
		return s.store.QueryRecentErrors(ctx, opts)
	})
	if err != nil {
		logging.Error().Err(err).Msg("Recent errors query failed")
		return []models.LogEntry{}
	}
	return result.([]models.LogEntry)
}

// QueryRaw runs a read-only ad-hoc query. Degraded mode, a non-SELECT
// statement, or any failure yields an empty result.
func (s *Service) QueryRaw(ctx context.Context, query string, params []interface{}) *models.RawResult {
	if !s.IsAvailable() {
		return models.EmptyRawResult()
	}

	result, err := s.readBreaker.Execute(func() (interface{}, error) {
		return s.store.QueryRaw(ctx, query, params)
	})
	if err != nil {
		logging.Error().Err(err).Msg("Raw query failed")
		return models.EmptyRawResult()
	}
	return result.(*models.RawResult)
}
