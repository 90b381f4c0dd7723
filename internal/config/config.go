// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package config

import (
	"time"
)

// RuntimeEnv distinguishes containerized from bare-host execution. It changes
// how the backing-store DSN is resolved (fixed data dir vs. local path).
type RuntimeEnv string

const (
	// RuntimeContainer indicates the process runs inside a container.
	RuntimeContainer RuntimeEnv = "container"
	// RuntimeHost indicates the process runs directly on a host.
	RuntimeHost RuntimeEnv = "host"
)

// Config is the root configuration for the Pulselog server.
type Config struct {
	// AppID is the default application identifier injected into records
	// that omit one.
	AppID string `koanf:"app_id" validate:"required"`

	// Runtime selects container vs host DSN resolution.
	Runtime RuntimeEnv `koanf:"runtime" validate:"oneof=container host"`

	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Security SecurityConfig `koanf:"security"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP/WebSocket surface.
type ServerConfig struct {
	ListenAddr string `koanf:"listen_addr" validate:"required"`

	// Rate limiting (httprate). The on-limit handler feeds the
	// rate_limit_alert broadcast.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StoreConfig configures the time-series backing store.
//
// Enabled false, or an unresolvable DSN, is not an error: the pipeline runs
// in degraded mode and every operation returns its empty fallback.
type StoreConfig struct {
	// Enabled is the store feature toggle.
	Enabled bool `koanf:"enabled"`

	// DSN is the explicit store location. When empty it is resolved from
	// the runtime environment (see ResolveStoreDSN).
	DSN string `koanf:"dsn"`

	// DataDir is the container data directory used during DSN resolution.
	DataDir string `koanf:"data_dir"`

	// Pool bounds.
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// ProbeTimeout bounds the liveness probe run before the pool is
	// declared connected.
	ProbeTimeout time.Duration `koanf:"probe_timeout"`

	// DuckDB tuning.
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SecurityConfig configures subscriber authentication.
type SecurityConfig struct {
	// JWTSecret signs and verifies bearer tokens (HS256). Minimum 32
	// characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout bounds token lifetime.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// MinStreamRole is the minimum role allowed to subscribe to the
	// log/alert stream and to run queries.
	MinStreamRole string `koanf:"min_stream_role" validate:"oneof=viewer support admin superadmin"`

	// CORSOrigins lists allowed browser origins. Empty means no
	// cross-origin access; "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`
}

// TrackerConfig configures the sliding-window failure tracker.
type TrackerConfig struct {
	Window            time.Duration `koanf:"window"`
	WarningThreshold  int           `koanf:"warning_threshold" validate:"min=1"`
	CriticalThreshold int           `koanf:"critical_threshold" validate:"min=1"`
	SweepInterval     time.Duration `koanf:"sweep_interval"`
}

// LoggingConfig configures the operational zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		AppID:   "pulselog",
		Runtime: RuntimeHost,
		Server: ServerConfig{
			ListenAddr:        ":8080",
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			ShutdownTimeout:   10 * time.Second,
		},
		Store: StoreConfig{
			Enabled:         false, // store is optional - degraded mode by default
			DSN:             "",
			DataDir:         "/data",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxIdleTime: 30 * time.Second,
			ProbeTimeout:    5 * time.Second,
			MaxMemory:       "1GB",
			Threads:         0, // 0 = runtime.NumCPU()
		},
		Security: SecurityConfig{
			JWTSecret:      "",
			SessionTimeout: 24 * time.Hour,
			MinStreamRole:  "admin",
			CORSOrigins:    []string{},
		},
		Tracker: TrackerConfig{
			Window:            5 * time.Minute,
			WarningThreshold:  3,
			CriticalThreshold: 10,
			SweepInterval:     time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
