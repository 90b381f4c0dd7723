// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package websocket implements the real-time subscriber stream.
//
// A single Hub owns room membership and fans out six message kinds:
// new_log, error_log, auth_failure_warning, auth_failure_critical,
// rate_limit_alert, and security_alert. Every subscriber is in the
// all-logs room; clients opt in and out of the errors room with
// subscribe-errors / unsubscribe-errors control messages.
//
// Broadcast and emit methods are safe on a nil hub so producers never
// need to check whether the stream layer initialized.
package websocket
