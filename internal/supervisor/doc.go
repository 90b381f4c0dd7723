// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package supervisor builds the suture supervision tree that keeps the
// long-running services alive: the websocket hub, the failure tracker
// sweep, the alert forwarder and the HTTP server. Crashed services are
// restarted with exponential backoff; shutdown is context driven.
package supervisor
