// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package auth

// Subscriber roles, lowest to highest. Each role inherits everything
// below it.
const (
	RoleViewer     = "viewer"
	RoleSupport    = "support"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// roleRank orders the role ladder. Unknown roles rank below viewer.
var roleRank = map[string]int{
	RoleViewer:     1,
	RoleSupport:    2,
	RoleAdmin:      3,
	RoleSuperadmin: 4,
}

// ValidRole reports whether name is a known role.
func ValidRole(name string) bool {
	_, ok := roleRank[name]
	return ok
}

// RoleAtLeast reports whether role meets or exceeds required in the
// hierarchy. An unknown role never satisfies any requirement; an unknown
// requirement is never satisfied.
func RoleAtLeast(role, required string) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}
	req, ok := roleRank[required]
	if !ok {
		return false
	}
	return r >= req
}
