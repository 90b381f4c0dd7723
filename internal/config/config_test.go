// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestDefaultTrackerThresholds(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Tracker.Window != 5*time.Minute {
		t.Errorf("window = %v, want 5m", cfg.Tracker.Window)
	}
	if cfg.Tracker.WarningThreshold != 3 {
		t.Errorf("warning threshold = %d, want 3", cfg.Tracker.WarningThreshold)
	}
	if cfg.Tracker.CriticalThreshold != 10 {
		t.Errorf("critical threshold = %d, want 10", cfg.Tracker.CriticalThreshold)
	}
	if cfg.Tracker.SweepInterval != time.Minute {
		t.Errorf("sweep interval = %v, want 1m", cfg.Tracker.SweepInterval)
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Tracker.WarningThreshold = 10
	cfg.Tracker.CriticalThreshold = 3

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for inverted thresholds")
	}
	if !strings.Contains(err.Error(), "warning_threshold") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsShortJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = "too-short"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for short jwt secret")
	}
}

func TestValidateAcceptsEmptyJWTSecret(t *testing.T) {
	// Empty secret means the real-time layer stays down; the pipeline must
	// still start in degraded mode.
	cfg := defaultConfig()
	cfg.Security.JWTSecret = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty secret should be accepted, got: %v", err)
	}
}

func TestValidateRejectsIdleAboveOpen(t *testing.T) {
	cfg := defaultConfig()
	cfg.Store.MaxIdleConns = 20
	cfg.Store.MaxOpenConns = 10

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for idle > open")
	}
}

func TestResolveStoreDSN(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{
			name: "disabled store resolves to nothing",
			mut:  func(c *Config) { c.Store.Enabled = false },
			want: "",
		},
		{
			name: "explicit dsn wins",
			mut: func(c *Config) {
				c.Store.Enabled = true
				c.Store.DSN = "/tmp/custom.duckdb"
				c.Runtime = RuntimeContainer
			},
			want: "/tmp/custom.duckdb",
		},
		{
			name: "container uses data dir",
			mut: func(c *Config) {
				c.Store.Enabled = true
				c.Runtime = RuntimeContainer
				c.Store.DataDir = "/data"
			},
			want: filepath.Join("/data", "pulselog.duckdb"),
		},
		{
			name: "host uses local path",
			mut: func(c *Config) {
				c.Store.Enabled = true
				c.Runtime = RuntimeHost
			},
			want: "pulselog.duckdb",
		},
		{
			name: "container without data dir is unresolvable",
			mut: func(c *Config) {
				c.Store.Enabled = true
				c.Runtime = RuntimeContainer
				c.Store.DataDir = ""
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mut(cfg)
			if got := ResolveStoreDSN(cfg); got != tt.want {
				t.Errorf("ResolveStoreDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveStoreDSNNilConfig(t *testing.T) {
	if got := ResolveStoreDSN(nil); got != "" {
		t.Errorf("nil config should resolve to empty, got %q", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PULSELOG_APP_ID", "app_id"},
		{"PULSELOG_RUNTIME", "runtime"},
		{"PULSELOG_STORE_DSN", "store.dsn"},
		{"PULSELOG_STORE_MAX_OPEN_CONNS", "store.max_open_conns"},
		{"PULSELOG_SERVER_LISTEN_ADDR", "server.listen_addr"},
		{"PULSELOG_TRACKER_WARNING_THRESHOLD", "tracker.warning_threshold"},
		{"PULSELOG_SECURITY_JWT_SECRET", "security.jwt_secret"},
		{"PULSELOG_LOGGING_LEVEL", "logging.level"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
