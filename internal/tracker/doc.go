// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package tracker implements sliding-window brute-force detection.
//
// Authentication failures are keyed by ip:fingerprint. Each key's first
// failure opens a fixed-duration window; failures inside the window
// accumulate, and crossing the warning or critical threshold emits one
// alert per level on a buffered channel. Expired windows are evicted
// lazily on read and by a periodic background sweep.
//
// Tracker state is process-local and lost on restart.
package tracker
