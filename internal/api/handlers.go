// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/pulselog/pulselog/internal/auth"
	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/logging"
	"github.com/pulselog/pulselog/internal/models"
	"github.com/pulselog/pulselog/internal/service"
	ws "github.com/pulselog/pulselog/internal/websocket"
)

// Handler carries the HTTP surface's collaborators.
type Handler struct {
	cfg        *config.Config
	svc        *service.Service
	hub        *ws.Hub
	jwtManager *auth.JWTManager
}

// NewHandler wires the handler set. jwtManager may be nil, which disables
// authentication entirely.
func NewHandler(cfg *config.Config, svc *service.Service, hub *ws.Hub, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		cfg:        cfg,
		svc:        svc,
		hub:        hub,
		jwtManager: jwtManager,
	}
}

// Health reports pipeline liveness: always 200, with the store state and
// subscriber count in the payload so dashboards can show the degraded
// indicator.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.svc.IsAvailable() {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:               status,
		StoreConnected:       h.svc.IsAvailable(),
		ConnectedSubscribers: h.svc.ConnectedSubscribers(),
	}, time.Now())
}

// IngestLog accepts one event record. A persisted record returns 201 with
// the stored entry; a record dropped in degraded mode returns 202 with a
// null body, matching the pipeline's silent-degradation contract.
func (h *Handler) IngestLog(w http.ResponseWriter, r *http.Request) {
	var record models.LogRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if record.EventType == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "event_type is required", nil)
		return
	}
	if !record.EventType.IsValid() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown event_type", nil)
		return
	}

	start := time.Now()
	entry := h.svc.Log(r.Context(), &record)
	if entry == nil {
		respondSuccess(w, http.StatusAccepted, nil, start)
		return
	}
	respondSuccess(w, http.StatusCreated, entry, start)
}

// Logs serves the filtered, paginated log query.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := models.LogQuery{
		AppID:     r.URL.Query().Get("app_id"),
		EventType: models.EventType(r.URL.Query().Get("event_type")),
		UserID:    r.URL.Query().Get("user_id"),
		Success:   getBoolParam(r, "success"),
		From:      getTimeParam(r, "from"),
		To:        getTimeParam(r, "to"),
		OrderBy:   r.URL.Query().Get("order_by"),
		SortDir:   r.URL.Query().Get("sort_dir"),
		Limit:     getIntParam(r, "limit", 0),
		Offset:    getIntParam(r, "offset", 0),
	}

	respondSuccess(w, http.StatusOK, h.svc.GetLogs(r.Context(), q), start)
}

// Stats serves the hourly/daily rollups.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	opts := models.StatsOptions{
		AppID:    r.URL.Query().Get("app_id"),
		DaysBack: getIntParam(r, "days_back", 0),
	}

	respondSuccess(w, http.StatusOK, h.svc.GetStats(r.Context(), opts), start)
}

// RecentErrors serves the newest failed entries.
func (h *Handler) RecentErrors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	opts := models.RecentErrorsOptions{
		AppID:       r.URL.Query().Get("app_id"),
		MinutesBack: getIntParam(r, "minutes_back", 0),
	}

	respondSuccess(w, http.StatusOK, h.svc.GetRecentErrors(r.Context(), opts), start)
}

// rawQueryRequest is the body of the ad-hoc query endpoint.
type rawQueryRequest struct {
	Query  string        `json:"query"`
	Params []interface{} `json:"params,omitempty"`
}

// RawQuery runs a read-only ad-hoc query. Restricted to superadmin at the
// router.
func (h *Handler) RawQuery(w http.ResponseWriter, r *http.Request) {
	var req rawQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "query is required", nil)
		return
	}

	start := time.Now()
	respondSuccess(w, http.StatusOK, h.svc.QueryRaw(r.Context(), req.Query, req.Params), start)
}

// getUpgrader builds the websocket upgrader with origin checking.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the configured
// allow-list. A missing Origin is rejected: browsers always send one, so
// its absence with a websocket handshake is suspect.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("Websocket connection rejected: missing Origin header")
		return false
	}

	if h.cfg == nil {
		return true
	}
	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("Websocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and joins the client to the stream.
// Authentication and the role gate run as route middleware before this
// handler.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("Websocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Stream unavailable", nil)
		return
	}

	username := ""
	if claims := claimsFromContext(r.Context()); claims != nil {
		username = claims.Username
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, username)
	h.hub.Register <- client
	client.Start()
}
