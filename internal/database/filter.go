// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package database

import (
	"strings"

	"github.com/pulselog/pulselog/internal/models"
)

// Pagination bounds for log queries.
const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// orderableColumns is the allow-list for the orderBy filter. Anything not in
// this list silently falls back to the default column; ordering input never
// reaches the SQL text unchecked.
var orderableColumns = map[string]bool{
	"created_at":  true,
	"event_type":  true,
	"app_id":      true,
	"user_id":     true,
	"status_code": true,
	"duration_ms": true,
}

const defaultOrderColumn = "created_at"

// SanitizeOrderBy returns a safe ordering column. Unknown or empty input
// falls back to created_at; this is a deliberate defensive default on a
// best-effort observability path, not an error.
func SanitizeOrderBy(column string) string {
	if orderableColumns[column] {
		return column
	}
	return defaultOrderColumn
}

// SanitizeSortDir normalizes the sort direction to ASC or DESC, defaulting
// to DESC (newest first).
func SanitizeSortDir(dir string) string {
	if strings.EqualFold(dir, "asc") {
		return "ASC"
	}
	return "DESC"
}

// ClampLimit bounds a requested page size to [1, MaxLogLimit], applying the
// default for unset values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLogLimit
	}
	if limit > MaxLogLimit {
		return MaxLogLimit
	}
	return limit
}

// ClampOffset bounds a requested offset to >= 0.
func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// buildLogFilter builds parameterized WHERE conditions from a LogQuery.
// Every filter value is bound as a parameter; nothing from the caller is
// spliced into the SQL text.
func buildLogFilter(q models.LogQuery) ([]string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	if q.AppID != "" {
		clauses = append(clauses, "app_id = ?")
		args = append(args, q.AppID)
	}
	if q.EventType != "" {
		clauses = append(clauses, "event_type = ?")
		args = append(args, string(q.EventType))
	}
	if q.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Success != nil {
		clauses = append(clauses, "success = ?")
		args = append(args, *q.Success)
	}
	if q.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, *q.To)
	}

	return clauses, args
}

// buildLogWhereClause wraps buildLogFilter with a "1=1" base for safe AND
// concatenation.
func buildLogWhereClause(q models.LogQuery) (string, []interface{}) {
	clauses, args := buildLogFilter(q)
	if len(clauses) == 0 {
		return "1=1", args
	}
	return "1=1 AND " + strings.Join(clauses, " AND "), args
}
