// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/pulselog/pulselog/internal/logging"
)

// ErrNotConnected is returned by Ping when the store was never initialized
// or has been closed. Query methods do not return it; they are only reached
// through the service layer, which checks availability first.
var ErrNotConnected = errors.New("backing store not connected")

// closeQuietly closes a resource, discarding the error. Used during teardown
// where the original failure is the one worth reporting.
func closeQuietly(c io.Closer) {
	_ = c.Close()
}

// closeWithLog closes a resource and logs a warning on failure.
func closeWithLog(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("resource", what).Msg("failed to close resource")
	}
}

// isConnectionError distinguishes dead-connection failures from ordinary
// query errors. Only the former flips the manager into degraded mode.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"broken pipe",
		"bad connection",
		"database is closed",
		"connection reset",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
