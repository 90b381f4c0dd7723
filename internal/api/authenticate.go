// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/pulselog/pulselog/internal/auth"
	"github.com/pulselog/pulselog/internal/logging"
)

type claimsContextKey struct{}

// claimsFromContext returns the validated claims, nil when the request was
// not authenticated (auth disabled).
func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*auth.Claims)
	return claims
}

// extractToken pulls the bearer token from the Authorization header, or
// from the token query parameter for websocket clients that cannot set
// headers.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Authenticate validates the bearer token and stores its claims in the
// request context. With no JWT manager configured authentication is
// disabled and every request passes without claims.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.jwtManager == nil {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
			return
		}

		claims, err := h.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Warn().
				Str("remote_addr", r.RemoteAddr).
				Str("path", r.URL.Path).
				Msg("Rejected invalid bearer token")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the role hierarchy. Requests pass when
// authentication is disabled.
func (h *Handler) RequireRole(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h.jwtManager == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims := claimsFromContext(r.Context())
			if claims == nil {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
				return
			}
			if !auth.RoleAtLeast(claims.Role, required) {
				logging.Warn().
					Str("username", sanitizeLogValue(claims.Username)).
					Str("role", sanitizeLogValue(claims.Role)).
					Str("required", required).
					Msg("Rejected request below required role")
				respondError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
