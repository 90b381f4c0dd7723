// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package database owns the connection to the DuckDB time-series store: the
// pooled connection manager, the append-only logs schema with its rollup
// views, and the parameterized query layer.
//
// The manager follows a strict graceful-degradation contract. Initialize
// reports availability as a boolean and treats missing configuration as a
// normal degraded mode; accessors return nil when disconnected; a dead
// connection detected mid-query flips the manager back to degraded so the
// next Initialize retries. Nothing in this package panics or escalates a
// store failure to its callers beyond an error return.
package database
