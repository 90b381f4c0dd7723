// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package service

import (
	"context"

	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/models"
	"github.com/pulselog/pulselog/internal/tracker"
)

// AlertSink receives threshold alerts. The websocket hub satisfies it.
type AlertSink interface {
	EmitAuthFailureWarning(payload models.AlertPayload)
	EmitAuthFailureCritical(payload models.AlertPayload)
}

// AlertForwarder drains the failure tracker's alert channel into the
// stream hub, mapping warning and critical levels to their message kinds.
// It runs as a supervised service.
type AlertForwarder struct {
	alerts <-chan tracker.Alert
	hub    AlertSink
}

// NewAlertForwarder connects a tracker's alert channel to a hub.
func NewAlertForwarder(ft *tracker.FailureTracker, hub AlertSink) *AlertForwarder {
	return &AlertForwarder{
		alerts: ft.Alerts(),
		hub:    hub,
	}
}

// Serve forwards alerts until the context is cancelled. It satisfies
// suture.Service.
func (f *AlertForwarder) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert := <-f.alerts:
			f.forward(alert)
		}
	}
}

func (f *AlertForwarder) forward(alert tracker.Alert) {
	switch alert.Level {
	case tracker.AlertCritical:
		f.hub.EmitAuthFailureCritical(alert.Payload)
	case tracker.AlertWarning:
		f.hub.EmitAuthFailureWarning(alert.Payload)
	default:
		logging.Warn().
			Str("level", string(alert.Level)).
			Msg("Dropping alert with unknown level")
	}
}

// String identifies the forwarder in supervisor logs.
func (f *AlertForwarder) String() string {
	return "alert-forwarder"
}
