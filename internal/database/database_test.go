// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/models"
)

// testConfig returns a config pointing at an in-memory store.
func testConfig() *config.Config {
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
	}
}

// newTestManager opens a connected in-memory manager.
func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(testConfig())
	if !m.Initialize(context.Background()) {
		t.Fatal("failed to initialize in-memory store")
	}
	t.Cleanup(func() {
		if err := m.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})
	return m
}

// insertTestLog writes one entry with sane defaults.
func insertTestLog(t *testing.T, m *Manager, mut func(*models.LogEntry)) *models.LogEntry {
	t.Helper()

	entry := &models.LogEntry{
		EventType: models.EventRequest,
		AppID:     "test-app",
		Success:   true,
	}
	if mut != nil {
		mut(entry)
	}
	if err := m.InsertLog(context.Background(), entry); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	return entry
}

func TestInitializeIdempotent(t *testing.T) {
	m := NewManager(testConfig())
	defer func() { _ = m.Close() }()

	if !m.Initialize(context.Background()) {
		t.Fatal("first initialize should succeed")
	}
	if !m.Initialize(context.Background()) {
		t.Fatal("second initialize should succeed")
	}
	if !m.IsConnected() {
		t.Error("manager should report connected")
	}
}

func TestInitializeDisabledStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Enabled = false
	m := NewManager(cfg)

	if m.Initialize(context.Background()) {
		t.Error("disabled store should not initialize")
	}
	if m.IsConnected() {
		t.Error("disabled store should not report connected")
	}
	if m.Conn() != nil {
		t.Error("Conn() should return nil when not initialized")
	}
	if err := m.Close(); err != nil {
		t.Errorf("close of never-initialized manager should succeed, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	m := NewManager(testConfig())
	m.Initialize(context.Background())

	if err := m.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if m.IsConnected() {
		t.Error("closed manager should not report connected")
	}
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	m := newTestManager(t)

	entry := insertTestLog(t, m, nil)
	if entry.ID == uuid.Nil {
		t.Error("insert should assign an id")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("insert should assign a creation timestamp")
	}
}

func TestInsertAndQueryRoundTrip(t *testing.T) {
	m := newTestManager(t)

	insertTestLog(t, m, func(e *models.LogEntry) {
		e.EventType = models.EventAuthFailed
		e.UserID = "u-1"
		e.IPAddress = "203.0.113.9"
		e.Fingerprint = "fp-1"
		e.StatusCode = 401
		e.DurationMs = 12
		e.Message = "bad password"
		e.Metadata = map[string]interface{}{"attempt": float64(3)}
		e.Success = false
	})

	page, err := m.QueryLogs(context.Background(), models.LogQuery{
		EventType: models.EventAuthFailed,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if page.Count != 1 || len(page.Rows) != 1 {
		t.Fatalf("expected 1 row, got count=%d rows=%d", page.Count, len(page.Rows))
	}

	got := page.Rows[0]
	if got.EventType != models.EventAuthFailed {
		t.Errorf("event type = %s", got.EventType)
	}
	if got.UserID != "u-1" || got.IPAddress != "203.0.113.9" || got.Fingerprint != "fp-1" {
		t.Errorf("identity fields mismatched: %+v", got)
	}
	if got.StatusCode != 401 || got.DurationMs != 12 {
		t.Errorf("numeric fields mismatched: %+v", got)
	}
	if got.Success {
		t.Error("success should be false")
	}
	if got.Metadata["attempt"] != float64(3) {
		t.Errorf("metadata lost: %+v", got.Metadata)
	}
}

func TestQueryLogsFilters(t *testing.T) {
	m := newTestManager(t)

	insertTestLog(t, m, func(e *models.LogEntry) { e.AppID = "alpha" })
	insertTestLog(t, m, func(e *models.LogEntry) { e.AppID = "beta" })
	insertTestLog(t, m, func(e *models.LogEntry) {
		e.AppID = "alpha"
		e.Success = false
	})

	page, err := m.QueryLogs(context.Background(), models.LogQuery{AppID: "alpha"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if page.Count != 2 {
		t.Errorf("app filter: count = %d, want 2", page.Count)
	}

	failed := false
	page, err = m.QueryLogs(context.Background(), models.LogQuery{AppID: "alpha", Success: &failed})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if page.Count != 1 {
		t.Errorf("success filter: count = %d, want 1", page.Count)
	}
}

func TestQueryLogsDateRange(t *testing.T) {
	m := newTestManager(t)

	old := time.Now().UTC().Add(-2 * time.Hour)
	insertTestLog(t, m, func(e *models.LogEntry) { e.CreatedAt = old })
	insertTestLog(t, m, nil)

	from := time.Now().UTC().Add(-time.Hour)
	page, err := m.QueryLogs(context.Background(), models.LogQuery{From: &from})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if page.Count != 1 {
		t.Errorf("date filter: count = %d, want 1", page.Count)
	}
}

func TestQueryLogsOrderByInjectionDefense(t *testing.T) {
	m := newTestManager(t)
	insertTestLog(t, m, nil)

	// A hostile orderBy must fall back to the safe default, not execute.
	page, err := m.QueryLogs(context.Background(), models.LogQuery{
		OrderBy: "DROP TABLE logs; --",
	})
	if err != nil {
		t.Fatalf("query with hostile orderBy failed: %v", err)
	}
	if page.Count != 1 {
		t.Errorf("count = %d, want 1", page.Count)
	}

	// The table must still exist.
	if _, err := m.QueryLogs(context.Background(), models.LogQuery{}); err != nil {
		t.Fatalf("logs table damaged: %v", err)
	}
}

func TestQueryLogsPaginationClamping(t *testing.T) {
	m := newTestManager(t)
	for i := 0; i < 3; i++ {
		insertTestLog(t, m, nil)
	}

	// An absurd limit is clamped, not passed through.
	page, err := m.QueryLogs(context.Background(), models.LogQuery{Limit: 100000, Offset: -5})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(page.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(page.Rows))
	}

	page, err = m.QueryLogs(context.Background(), models.LogQuery{Limit: 2})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(page.Rows) != 2 || page.Count != 3 {
		t.Errorf("limit 2: rows=%d count=%d, want rows=2 count=3", len(page.Rows), page.Count)
	}
}

func TestQueryRecentErrors(t *testing.T) {
	m := newTestManager(t)

	insertTestLog(t, m, func(e *models.LogEntry) { e.Success = false })
	insertTestLog(t, m, nil) // success, excluded
	insertTestLog(t, m, func(e *models.LogEntry) {
		e.Success = false
		e.CreatedAt = time.Now().UTC().Add(-3 * time.Hour) // outside lookback
	})

	errorsFound, err := m.QueryRecentErrors(context.Background(), models.RecentErrorsOptions{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(errorsFound) != 1 {
		t.Errorf("recent errors = %d, want 1", len(errorsFound))
	}
}

func TestQueryRawReadOnlyGuard(t *testing.T) {
	m := newTestManager(t)
	insertTestLog(t, m, nil)

	result, err := m.QueryRaw(context.Background(),
		"SELECT event_type, COUNT(*) AS n FROM logs GROUP BY event_type", nil)
	if err != nil {
		t.Fatalf("raw select failed: %v", err)
	}
	if result.RowCount != 1 {
		t.Errorf("row count = %d, want 1", result.RowCount)
	}

	if _, err := m.QueryRaw(context.Background(), "DELETE FROM logs", nil); err == nil {
		t.Fatal("write statement should be rejected")
	}
}

func TestQueryRawWithParams(t *testing.T) {
	m := newTestManager(t)
	insertTestLog(t, m, func(e *models.LogEntry) { e.AppID = "alpha" })
	insertTestLog(t, m, func(e *models.LogEntry) { e.AppID = "beta" })

	result, err := m.QueryRaw(context.Background(),
		"SELECT COUNT(*) AS n FROM logs WHERE app_id = ?", []interface{}{"alpha"})
	if err != nil {
		t.Fatalf("raw select failed: %v", err)
	}
	if result.RowCount != 1 {
		t.Fatalf("row count = %d, want 1", result.RowCount)
	}
}

func TestQueryStats(t *testing.T) {
	m := newTestManager(t)

	insertTestLog(t, m, func(e *models.LogEntry) { e.UserID = "u-1" })
	insertTestLog(t, m, func(e *models.LogEntry) { e.UserID = "u-2" })
	insertTestLog(t, m, func(e *models.LogEntry) {
		e.UserID = "u-1"
		e.Success = false
		e.DurationMs = 40
	})

	stats, err := m.QueryStats(context.Background(), models.StatsOptions{AppID: "test-app"})
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if len(stats.Hourly) == 0 {
		t.Fatal("expected at least one hourly bucket")
	}
	if len(stats.Daily) == 0 {
		t.Fatal("expected at least one daily bucket")
	}

	var total, errs int64
	for _, b := range stats.Hourly {
		total += b.Total
		errs += b.ErrorCount
	}
	if total != 3 {
		t.Errorf("hourly total = %d, want 3", total)
	}
	if errs != 1 {
		t.Errorf("hourly errors = %d, want 1", errs)
	}
}
