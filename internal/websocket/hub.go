// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/metrics"
	"github.com/pulselog/pulselog/internal/models"
)

// Server-pushed message types.
const (
	MessageTypeNewLog              = "new_log"
	MessageTypeErrorLog            = "error_log"
	MessageTypeAuthFailureWarning  = "auth_failure_warning"
	MessageTypeAuthFailureCritical = "auth_failure_critical"
	MessageTypeRateLimitAlert      = "rate_limit_alert"
	MessageTypeSecurityAlert       = "security_alert"
	MessageTypePing                = "ping"
	MessageTypePong                = "pong"
)

// Client-sent control messages toggling errors-only room membership.
const (
	ControlSubscribeErrors   = "subscribe-errors"
	ControlUnsubscribeErrors = "unsubscribe-errors"
)

// Message is the wire envelope for both directions.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// envelope is the internal broadcast unit. errorsOnly restricts delivery
// to clients that joined the errors room.
type envelope struct {
	msg        Message
	errorsOnly bool
}

// Hub maintains the set of connected subscribers and fans broadcasts out
// to them. Every connected client is in the all-logs room; the errors room
// is the subset that opted in via subscribe-errors.
//
// All broadcast and emit methods tolerate a nil receiver so that callers
// never need to guard for an uninitialized stream layer.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. Run RunWithContext before registering clients.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan envelope, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub event loop until the context is cancelled,
// then closes every client and returns ctx.Err(). Designed for suture
// supervision.
//
// Selection is priority-ordered so behavior stays predictable when several
// channels are ready: shutdown first, then client lifecycle, then
// broadcasts.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle.
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		// Priority 3: broadcasts, or block until anything arrives.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSClientsConnected.Set(float64(total))
	logging.Info().
		Str("username", client.username).
		Int("total_clients", total).
		Msg("Stream subscriber connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSClientsConnected.Set(float64(total))
	logging.Info().
		Str("username", client.username).
		Int("total_clients", total).
		Msg("Stream subscriber disconnected")
}

// deliver fans one envelope out to the matching room. Clients are walked
// in id order so delivery order is reproducible; a client with a full send
// queue is dropped rather than blocking the loop.
func (h *Hub) deliver(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		if env.errorsOnly && !client.WantsErrors() {
			continue
		}
		select {
		case client.send <- env.msg:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WSClientsConnected.Set(float64(len(h.clients)))
		logging.Warn().
			Int("dropped_clients", len(toRemove)).
			Str("message_type", env.msg.Type).
			Msg("Dropped slow stream subscribers")
	}
}

// shutdown closes every client and logs the reason.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.WSClientsConnected.Set(0)

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", count).
		Msg("Stream hub stopped")
}

// enqueue hands an envelope to the event loop without blocking. Overflow
// drops the message and counts it.
func (h *Hub) enqueue(env envelope) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- env:
	default:
		metrics.WSBroadcastsDroppedTotal.WithLabelValues(env.msg.Type).Inc()
		logging.Warn().
			Str("message_type", env.msg.Type).
			Msg("Broadcast queue full, dropping message")
	}
}

// BroadcastNewLog pushes a persisted entry to the all-logs room. A failed
// entry is additionally pushed to the errors room as an error_log message.
func (h *Hub) BroadcastNewLog(entry *models.LogEntry) {
	if h == nil || entry == nil {
		return
	}
	h.enqueue(envelope{msg: Message{Type: MessageTypeNewLog, Data: entry}})
	if !entry.Success {
		h.BroadcastErrorLog(entry)
	}
}

// BroadcastErrorLog pushes an entry to the errors room only.
func (h *Hub) BroadcastErrorLog(entry *models.LogEntry) {
	if h == nil || entry == nil {
		return
	}
	h.enqueue(envelope{
		msg:        Message{Type: MessageTypeErrorLog, Data: entry},
		errorsOnly: true,
	})
}

// EmitAuthFailureWarning pushes a warning-level brute-force alert.
func (h *Hub) EmitAuthFailureWarning(payload models.AlertPayload) {
	if h == nil {
		return
	}
	logging.Info().
		Str("ip_address", payload.IPAddress).
		Int("failure_count", payload.FailureCount).
		Msg("Auth failure warning alert")
	h.enqueue(envelope{msg: Message{Type: MessageTypeAuthFailureWarning, Data: payload}})
}

// EmitAuthFailureCritical pushes a critical-level brute-force alert.
func (h *Hub) EmitAuthFailureCritical(payload models.AlertPayload) {
	if h == nil {
		return
	}
	logging.Warn().
		Str("ip_address", payload.IPAddress).
		Int("failure_count", payload.FailureCount).
		Msg("Auth failure critical alert")
	h.enqueue(envelope{msg: Message{Type: MessageTypeAuthFailureCritical, Data: payload}})
}

// RateLimitAlertData is the payload of a rate_limit_alert message.
type RateLimitAlertData struct {
	Timestamp string `json:"timestamp"`
	IPAddress string `json:"ip_address,omitempty"`
	Path      string `json:"path,omitempty"`
}

// EmitRateLimitAlert pushes a rate-limit rejection notice.
func (h *Hub) EmitRateLimitAlert(ipAddress, path string) {
	if h == nil {
		return
	}
	data := RateLimitAlertData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		IPAddress: ipAddress,
		Path:      path,
	}
	logging.Info().
		Str("ip_address", ipAddress).
		Str("path", path).
		Msg("Rate limit alert")
	h.enqueue(envelope{msg: Message{Type: MessageTypeRateLimitAlert, Data: data}})
}

// SecurityAlertData is the payload of a security_alert message.
type SecurityAlertData struct {
	Timestamp string                 `json:"timestamp"`
	Reason    string                 `json:"reason"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// EmitSecurityAlert pushes a generic security notice.
func (h *Hub) EmitSecurityAlert(reason string, details map[string]interface{}) {
	if h == nil {
		return
	}
	data := SecurityAlertData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Reason:    reason,
		Details:   details,
	}
	logging.Info().Str("reason", reason).Msg("Security alert")
	h.enqueue(envelope{msg: Message{Type: MessageTypeSecurityAlert, Data: data}})
}

// ConnectedCount returns the number of connected subscribers, zero when
// the hub never initialized.
func (h *Hub) ConnectedCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
