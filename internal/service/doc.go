// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package service is the pipeline façade tying the store, the failure
// tracker and the stream hub together.
//
// The façade's contract is silent degradation: callers never see an error.
// Writes are dropped when the store is down, reads return empty results,
// and a circuit breaker turns a failing store into fast empty responses.
// Failed-authentication events always reach the tracker regardless of
// store state.
package service
