// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package logging provides the unified zerolog-based operational logger for
// Pulselog, plus an slog.Handler bridge for libraries (suture) that speak
// log/slog.
package logging
