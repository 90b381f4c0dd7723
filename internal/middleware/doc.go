// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package middleware provides the HTTP middleware shared across routes:
// request-id propagation and Prometheus instrumentation.
package middleware
