// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator returns the shared validator instance. The instance is
// thread-safe and caches struct metadata across calls.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// minJWTSecretLength is the minimum accepted JWT secret length. Shorter
// secrets make HS256 brute-forceable.
const minJWTSecretLength = 32

// Validate checks the configuration for structural and cross-field problems.
//
// Note the degraded-mode contract: a disabled store or an unresolvable DSN is
// NOT a validation error. Only configurations that would make the process
// misbehave (inverted thresholds, weak secrets) are rejected.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	checks := []func() error{
		c.validateTracker,
		c.validateSecurity,
		c.validateStore,
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateTracker() error {
	t := c.Tracker
	if t.Window <= 0 {
		return fmt.Errorf("tracker.window must be positive, got %v", t.Window)
	}
	if t.SweepInterval <= 0 {
		return fmt.Errorf("tracker.sweep_interval must be positive, got %v", t.SweepInterval)
	}
	if t.WarningThreshold >= t.CriticalThreshold {
		return fmt.Errorf("tracker.warning_threshold (%d) must be below tracker.critical_threshold (%d)",
			t.WarningThreshold, t.CriticalThreshold)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.JWTSecret != "" && len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("security.jwt_secret must be at least %d characters", minJWTSecretLength)
	}
	if s.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive, got %v", s.SessionTimeout)
	}
	return nil
}

func (c *Config) validateStore() error {
	s := c.Store
	if s.MaxIdleConns > s.MaxOpenConns {
		return fmt.Errorf("store.max_idle_conns (%d) must not exceed store.max_open_conns (%d)",
			s.MaxIdleConns, s.MaxOpenConns)
	}
	if s.ProbeTimeout <= 0 {
		return fmt.Errorf("store.probe_timeout must be positive, got %v", s.ProbeTimeout)
	}
	return nil
}
