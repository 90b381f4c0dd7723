// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package config

import (
	"path/filepath"
)

// storeFileName is the DuckDB database file the pipeline owns.
const storeFileName = "pulselog.duckdb"

// ResolveStoreDSN resolves the backing-store DSN for the configured runtime
// environment.
//
// An explicitly configured DSN always wins. Otherwise the location depends on
// where the process runs: containers use the mounted data directory, bare
// hosts use a path relative to the working directory. An empty return value
// means the store is unresolvable; callers treat that as degraded mode, not
// as an error.
func ResolveStoreDSN(cfg *Config) string {
	if cfg == nil || !cfg.Store.Enabled {
		return ""
	}

	if cfg.Store.DSN != "" {
		return cfg.Store.DSN
	}

	switch cfg.Runtime {
	case RuntimeContainer:
		if cfg.Store.DataDir == "" {
			return ""
		}
		return filepath.Join(cfg.Store.DataDir, storeFileName)
	case RuntimeHost:
		return filepath.Join(".", storeFileName)
	default:
		return ""
	}
}
