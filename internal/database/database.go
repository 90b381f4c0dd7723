// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/metrics"
)

// Manager owns the pooled connection to the time-series backing store.
//
// The manager never fails its callers: Initialize reports availability as a
// boolean, accessors return nil when the store is down, and Close is safe to
// call in any state. The rest of the application must be able to run fully
// featured with this subsystem entirely absent.
type Manager struct {
	cfg *config.Config

	mu        sync.Mutex
	conn      *sql.DB
	connected bool
}

// NewManager creates a connection manager. No connection is opened until the
// first Initialize call.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Initialize opens the connection pool and probes it. It is idempotent: when
// already connected it returns true immediately without re-probing.
//
// A disabled store or an unresolvable DSN is normal degraded mode, reported
// as false without noise. Transient failures tear down any partial pool, log
// once, and also report false; the next Initialize call retries from scratch.
func (m *Manager) Initialize(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return true
	}

	dsn := config.ResolveStoreDSN(m.cfg)
	if dsn == "" {
		logging.Debug().Msg("backing store not configured, running degraded")
		return false
	}

	conn, err := m.open(dsn)
	if err != nil {
		logging.Warn().Err(err).Str("dsn", dsn).Msg("failed to open backing store")
		return false
	}

	// Liveness probe before declaring success.
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.Store.ProbeTimeout)
	defer cancel()
	if err := conn.PingContext(probeCtx); err != nil {
		logging.Warn().Err(err).Msg("backing store liveness probe failed")
		closeQuietly(conn)
		return false
	}

	if err := createSchema(probeCtx, conn); err != nil {
		logging.Warn().Err(err).Msg("failed to initialize store schema")
		closeQuietly(conn)
		return false
	}

	m.conn = conn
	m.connected = true
	metrics.SetStoreConnected(true)
	logging.Info().Str("dsn", dsn).Msg("backing store connected")
	return true
}

// open builds the DuckDB connection string and configures the pool bounds.
func (m *Manager) open(dsn string) (*sql.DB, error) {
	st := m.cfg.Store

	numThreads := st.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed stores.
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301.
	if dir := filepath.Dir(dsn); dir != "" && dir != "." && dsn != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}

	// Disable auto-install/auto-load of extensions to prevent hangs in
	// restricted network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		dsn, numThreads, st.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	conn.SetMaxOpenConns(st.MaxOpenConns)
	conn.SetMaxIdleConns(st.MaxIdleConns)
	conn.SetConnMaxIdleTime(st.ConnMaxIdleTime)

	return conn, nil
}

// IsConnected reports whether the pool is open and probed.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Conn returns the underlying pool, or nil when the store is not
// initialized. Callers must check for nil.
func (m *Manager) Conn() *sql.DB {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil
	}
	return m.conn
}

// Ping checks that the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	conn := m.Conn()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.PingContext(ctx)
}

// Close drains and closes the pool. It performs a CHECKPOINT first to flush
// the WAL, is idempotent, and is safe to call when never initialized.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := m.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("failed to checkpoint store before close")
	}

	err := m.conn.Close()
	m.conn = nil
	m.connected = false
	metrics.SetStoreConnected(false)
	logging.Info().Msg("backing store closed")
	return err
}

// markDisconnected flips the manager into degraded mode after a query-side
// connection failure so the next Initialize retries from scratch.
func (m *Manager) markDisconnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		closeQuietly(m.conn)
		m.conn = nil
	}
	m.connected = false
	metrics.SetStoreConnected(false)
}
