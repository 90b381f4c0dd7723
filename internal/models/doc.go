// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package models defines the shared data types of the pipeline: the
// write-side LogRecord, the persisted LogEntry, query filters, rollup rows,
// and alert payloads. Types here carry no behavior beyond defaulting rules.
package models
