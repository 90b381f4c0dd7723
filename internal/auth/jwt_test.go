// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pulselog/pulselog/internal/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:      "test-secret-key-for-unit-tests-32ch",
		SessionTimeout: time.Hour,
		MinStreamRole:  RoleAdmin,
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.JWTSecret = ""

	if _, err := NewJWTManager(cfg); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	token, err := m.GenerateToken("alice", RoleAdmin)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("role = %q, want admin", claims.Role)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Error("expiry should be within the session timeout")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	m, _ := NewJWTManager(testSecurityConfig())
	token, _ := m.GenerateToken("alice", RoleViewer)

	// Flip part of the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := m.ValidateToken(tampered); err == nil {
		t.Fatal("tampered token should be rejected")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m1, _ := NewJWTManager(testSecurityConfig())
	other := testSecurityConfig()
	other.JWTSecret = "a-completely-different-secret-32char"
	m2, _ := NewJWTManager(other)

	token, _ := m1.GenerateToken("alice", RoleViewer)
	if _, err := m2.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret should be rejected")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.SessionTimeout = -time.Minute
	m, _ := NewJWTManager(cfg)

	token, _ := m.GenerateToken("alice", RoleViewer)
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expired token should be rejected")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m, _ := NewJWTManager(testSecurityConfig())

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.ValidateToken(tok); err == nil {
			t.Errorf("token %q should be rejected", tok)
		}
	}
}
