// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package api is the HTTP and websocket surface: chi routing, bearer-token
// authentication with the role gate, per-IP rate limiting that feeds the
// rate_limit_alert stream, and the JSON handlers over the pipeline façade.
package api
