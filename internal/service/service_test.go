// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/models"
	"github.com/pulselog/pulselog/internal/tracker"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// fakeBroadcaster records broadcasts for assertions.
type fakeBroadcaster struct {
	mu      sync.Mutex
	entries []*models.LogEntry
}

func (f *fakeBroadcaster) BroadcastNewLog(entry *models.LogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeBroadcaster) ConnectedCount() int { return 0 }

func (f *fakeBroadcaster) broadcasts() []*models.LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.LogEntry(nil), f.entries...)
}

func testServiceConfig() *config.Config {
	return &config.Config{
		AppID:   "test-app",
		Runtime: config.RuntimeHost,
		Store: config.StoreConfig{
			Enabled:         true,
			DSN:             ":memory:",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxIdleTime: 30 * time.Second,
			ProbeTimeout:    5 * time.Second,
			MaxMemory:       "256MB",
			Threads:         2,
		},
		Tracker: config.TrackerConfig{
			Window:            5 * time.Minute,
			WarningThreshold:  3,
			CriticalThreshold: 10,
			SweepInterval:     time.Minute,
		},
	}
}

// newTestService wires a façade over an in-memory store.
func newTestService(t *testing.T) (*Service, *fakeBroadcaster, *tracker.FailureTracker) {
	t.Helper()

	cfg := testServiceConfig()
	store := database.NewManager(cfg)
	if !store.Initialize(context.Background()) {
		t.Fatal("failed to initialize in-memory store")
	}
	t.Cleanup(func() { _ = store.Close() })

	hub := &fakeBroadcaster{}
	ft := tracker.NewFailureTracker(cfg.Tracker)
	return New(cfg, store, hub, ft), hub, ft
}

// newDegradedService wires a façade with no store at all.
func newDegradedService() (*Service, *fakeBroadcaster) {
	cfg := testServiceConfig()
	cfg.Store.Enabled = false
	hub := &fakeBroadcaster{}
	return New(cfg, nil, hub, tracker.NewFailureTracker(cfg.Tracker)), hub
}

func boolPtr(b bool) *bool { return &b }

func TestLogPersistsAndBroadcasts(t *testing.T) {
	svc, hub, _ := newTestService(t)

	entry := svc.Log(context.Background(), &models.LogRecord{
		EventType: models.EventRequest,
		UserID:    "u-1",
	})
	if entry == nil {
		t.Fatal("expected persisted entry")
	}
	if entry.AppID != "test-app" {
		t.Errorf("app id default not applied: %q", entry.AppID)
	}
	if !entry.Success {
		t.Error("success should default to true")
	}

	broadcasts := hub.broadcasts()
	if len(broadcasts) != 1 || broadcasts[0].ID != entry.ID {
		t.Errorf("expected one broadcast of the persisted entry, got %d", len(broadcasts))
	}

	page := svc.GetLogs(context.Background(), models.LogQuery{})
	if page.Count != 1 {
		t.Errorf("persisted count = %d, want 1", page.Count)
	}
}

func TestLogFailedAuthFeedsTracker(t *testing.T) {
	svc, hub, ft := newTestService(t)

	entry := svc.Log(context.Background(), &models.LogRecord{
		EventType:   models.EventAuthFailed,
		IPAddress:   "203.0.113.9",
		Fingerprint: "fp-1",
		Success:     boolPtr(false),
	})
	if entry == nil {
		t.Fatal("expected persisted entry")
	}

	// Exactly one tracker invocation with the entry's identity.
	if got := ft.FailureCount("203.0.113.9", "fp-1"); got != 1 {
		t.Errorf("tracker count = %d, want 1", got)
	}
	if len(hub.broadcasts()) != 1 {
		t.Errorf("broadcasts = %d, want 1", len(hub.broadcasts()))
	}
}

func TestLogSuccessfulAuthDoesNotFeedTracker(t *testing.T) {
	svc, _, ft := newTestService(t)

	svc.Log(context.Background(), &models.LogRecord{
		EventType: models.EventAuthFailed,
		IPAddress: "203.0.113.9",
		Success:   boolPtr(true),
	})
	svc.Log(context.Background(), &models.LogRecord{
		EventType: models.EventAuthSuccess,
		IPAddress: "203.0.113.9",
		Success:   boolPtr(false),
	})

	if got := ft.FailureCount("203.0.113.9", ""); got != 0 {
		t.Errorf("tracker count = %d, want 0", got)
	}
}

func TestLogInvalidEventTypeDropped(t *testing.T) {
	svc, hub, _ := newTestService(t)

	if entry := svc.Log(context.Background(), &models.LogRecord{EventType: "bogus"}); entry != nil {
		t.Error("invalid event type should not persist")
	}
	if entry := svc.Log(context.Background(), nil); entry != nil {
		t.Error("nil record should not persist")
	}
	if len(hub.broadcasts()) != 0 {
		t.Error("nothing should have been broadcast")
	}
}

func TestDegradedModeNeverErrors(t *testing.T) {
	svc, hub := newDegradedService()
	ctx := context.Background()

	if svc.IsAvailable() {
		t.Error("degraded service should not report available")
	}

	if entry := svc.Log(ctx, &models.LogRecord{EventType: models.EventRequest}); entry != nil {
		t.Error("degraded log should drop the record")
	}
	if len(hub.broadcasts()) != 0 {
		t.Error("degraded log should not broadcast")
	}

	page := svc.GetLogs(ctx, models.LogQuery{})
	if page == nil || page.Count != 0 || page.Rows == nil {
		t.Errorf("degraded GetLogs = %+v, want empty page", page)
	}

	stats := svc.GetStats(ctx, models.StatsOptions{})
	if stats == nil || stats.Hourly == nil || stats.Daily == nil {
		t.Errorf("degraded GetStats = %+v, want empty stats", stats)
	}

	recent := svc.GetRecentErrors(ctx, models.RecentErrorsOptions{})
	if recent == nil || len(recent) != 0 {
		t.Errorf("degraded GetRecentErrors = %+v, want empty slice", recent)
	}

	raw := svc.QueryRaw(ctx, "SELECT 1", nil)
	if raw == nil || raw.RowCount != 0 || raw.Rows == nil {
		t.Errorf("degraded QueryRaw = %+v, want empty result", raw)
	}
}

func TestDegradedFailedAuthStillTracked(t *testing.T) {
	svc, _ := newDegradedService()

	svc.Log(context.Background(), &models.LogRecord{
		EventType: models.EventAuthFailed,
		IPAddress: "203.0.113.9",
		Success:   boolPtr(false),
	})

	if got := svc.tracker.FailureCount("203.0.113.9", ""); got != 1 {
		t.Errorf("tracker count = %d, want 1 even without a store", got)
	}
}

func TestQueryRawRejectsWrites(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.Log(context.Background(), &models.LogRecord{EventType: models.EventRequest})

	raw := svc.QueryRaw(context.Background(), "DELETE FROM logs", nil)
	if raw.RowCount != 0 {
		t.Error("write statement should yield the empty result")
	}

	page := svc.GetLogs(context.Background(), models.LogQuery{})
	if page.Count != 1 {
		t.Error("rows must survive a rejected write statement")
	}
}

func TestGetLogsHostileOrderByFallsBack(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.Log(context.Background(), &models.LogRecord{EventType: models.EventRequest})

	page := svc.GetLogs(context.Background(), models.LogQuery{OrderBy: "1; DROP TABLE logs"})
	if page.Count != 1 {
		t.Errorf("count = %d, want 1", page.Count)
	}
}

func TestConnectedSubscribersNilHub(t *testing.T) {
	svc := New(testServiceConfig(), nil, nil, nil)
	if got := svc.ConnectedSubscribers(); got != 0 {
		t.Errorf("subscribers = %d, want 0", got)
	}
}
