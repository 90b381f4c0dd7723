// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package auth provides bearer-token authentication for the query API and
// the live stream: HS256 JWT issuance and validation, plus the subscriber
// role hierarchy (viewer < support < admin < superadmin).
package auth
