// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

// Package config loads and validates the Pulselog server configuration.
//
// Configuration is layered with koanf: struct defaults, then an optional
// YAML file (CONFIG_PATH or the default search paths), then PULSELOG_-
// prefixed environment variables. The package also owns the runtime
// environment indirection: ResolveStoreDSN maps the container/host flag to a
// concrete backing-store location, and returns empty (degraded mode, never
// an error) when the store is disabled or unresolvable.
package config
