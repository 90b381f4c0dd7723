// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package supervisor

import "context"

// ContextHub is the hub surface the supervisor needs.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService adapts the websocket hub to a suture service.
type HubService struct {
	hub ContextHub
}

// NewHubService wraps hub for supervision.
func NewHubService(hub ContextHub) *HubService {
	return &HubService{hub: hub}
}

// Serve runs the hub until the context is cancelled.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *HubService) String() string {
	return "websocket-hub"
}
