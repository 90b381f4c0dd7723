// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/pulselog/pulselog/internal/metrics"
	"github.com/pulselog/pulselog/internal/models"
)

// Recent-errors query bounds.
const (
	DefaultErrorLookback = 60 * time.Minute
	MaxRecentErrors      = 100
)

// ErrNotReadOnly is returned by QueryRaw for statements that are not
// read-only. The escape hatch serves ad-hoc reporting aggregates, never
// writes.
var ErrNotReadOnly = errors.New("raw queries must be read-only")

const logColumns = `id, event_type, event_subtype, app_id, user_id, ip_address,
	fingerprint, user_agent, request_method, request_path, status_code,
	duration_ms, message, metadata, success, created_at`

// InsertLog persists one entry. The generated id and creation timestamp are
// assigned here if unset, and the passed entry is updated in place so the
// caller can return the persisted form.
func (m *Manager) InsertLog(ctx context.Context, entry *models.LogEntry) error {
	conn := m.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var metadata interface{}
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize metadata: %w", err)
		}
		metadata = string(raw)
	}

	query := `INSERT INTO logs (` + logColumns + `) VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := conn.ExecContext(ctx, query,
		entry.ID, string(entry.EventType), nullable(entry.EventSubtype),
		entry.AppID, nullable(entry.UserID), nullable(entry.IPAddress),
		nullable(entry.Fingerprint), nullable(entry.UserAgent),
		nullable(entry.RequestMethod), nullable(entry.RequestPath),
		nullableInt(entry.StatusCode), nullableInt(entry.DurationMs),
		nullable(entry.Message), metadata, entry.Success, entry.CreatedAt,
	)
	metrics.ObserveStoreQuery("insert_log", start, err)

	if err != nil {
		if isConnectionError(err) {
			m.markDisconnected()
		}
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

// QueryLogs runs a filtered, paginated query and returns the matching page
// plus the total match count. Ordering input is sanitized against the
// allow-list, pagination is clamped, and all filter values are bound.
func (m *Manager) QueryLogs(ctx context.Context, q models.LogQuery) (*models.LogPage, error) {
	conn := m.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	where, args := buildLogWhereClause(q)

	start := time.Now()
	var count int64
	countQuery := "SELECT COUNT(*) FROM logs WHERE " + where
	err := conn.QueryRowContext(ctx, countQuery, args...).Scan(&count)
	metrics.ObserveStoreQuery("count_logs", start, err)
	if err != nil {
		if isConnectionError(err) {
			m.markDisconnected()
		}
		return nil, fmt.Errorf("failed to count logs: %w", err)
	}

	orderBy := SanitizeOrderBy(q.OrderBy)
	sortDir := SanitizeSortDir(q.SortDir)
	limit := ClampLimit(q.Limit)
	offset := ClampOffset(q.Offset)

	rowsQuery := fmt.Sprintf(
		"SELECT %s FROM logs WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?",
		logColumns, where, orderBy, sortDir,
	)
	rowArgs := append(args, limit, offset)

	start = time.Now()
	rows, err := conn.QueryContext(ctx, rowsQuery, rowArgs...)
	metrics.ObserveStoreQuery("query_logs", start, err)
	if err != nil {
		if isConnectionError(err) {
			m.markDisconnected()
		}
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer closeWithLog(rows, "log rows")

	entries, err := scanLogEntries(rows)
	if err != nil {
		return nil, err
	}

	return &models.LogPage{Count: count, Rows: entries}, nil
}

// QueryRecentErrors returns the most recent failed events within the
// lookback window, newest first.
func (m *Manager) QueryRecentErrors(ctx context.Context, opts models.RecentErrorsOptions) ([]models.LogEntry, error) {
	conn := m.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	lookback := DefaultErrorLookback
	if opts.MinutesBack > 0 {
		lookback = time.Duration(opts.MinutesBack) * time.Minute
	}
	limit := opts.Limit
	if limit <= 0 || limit > MaxRecentErrors {
		limit = MaxRecentErrors
	}

	query := "SELECT " + logColumns + " FROM logs WHERE success = FALSE AND created_at >= ?"
	args := []interface{}{time.Now().UTC().Add(-lookback)}
	if opts.AppID != "" {
		query += " AND app_id = ?"
		args = append(args, opts.AppID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	metrics.ObserveStoreQuery("recent_errors", start, err)
	if err != nil {
		if isConnectionError(err) {
			m.markDisconnected()
		}
		return nil, fmt.Errorf("failed to query recent errors: %w", err)
	}
	defer closeWithLog(rows, "recent error rows")

	return scanLogEntries(rows)
}

// QueryRaw executes a caller-supplied read-only statement with bound
// parameters. The statement text is passed through verbatim; this method
// never concatenates caller strings, and callers must use placeholders.
func (m *Manager) QueryRaw(ctx context.Context, query string, params []interface{}) (*models.RawResult, error) {
	conn := m.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	trimmed := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(trimmed, "SELECT") && !strings.HasPrefix(trimmed, "WITH") {
		return nil, ErrNotReadOnly
	}

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, params...)
	metrics.ObserveStoreQuery("raw", start, err)
	if err != nil {
		if isConnectionError(err) {
			m.markDisconnected()
		}
		return nil, fmt.Errorf("raw query failed: %w", err)
	}
	defer closeWithLog(rows, "raw rows")

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read raw columns: %w", err)
	}

	result := models.EmptyRawResult()
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan raw row: %w", err)
		}

		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("raw row iteration failed: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// scanLogEntries drains a result set of logColumns rows.
func scanLogEntries(rows *sql.Rows) ([]models.LogEntry, error) {
	entries := []models.LogEntry{}

	for rows.Next() {
		var (
			entry                               models.LogEntry
			eventType                           string
			subtype, userID, ip, fp, ua         sql.NullString
			method, path, message, metadataJSON sql.NullString
			statusCode, durationMs              sql.NullInt64
		)

		err := rows.Scan(
			&entry.ID, &eventType, &subtype, &entry.AppID, &userID, &ip,
			&fp, &ua, &method, &path, &statusCode, &durationMs,
			&message, &metadataJSON, &entry.Success, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}

		entry.EventType = models.EventType(eventType)
		entry.EventSubtype = subtype.String
		entry.UserID = userID.String
		entry.IPAddress = ip.String
		entry.Fingerprint = fp.String
		entry.UserAgent = ua.String
		entry.RequestMethod = method.String
		entry.RequestPath = path.String
		entry.Message = message.String
		entry.StatusCode = int(statusCode.Int64)
		entry.DurationMs = int(durationMs.Int64)

		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("log row iteration failed: %w", err)
	}

	return entries, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullableInt maps zero to SQL NULL. Status codes and durations are never
// legitimately zero in this schema.
func nullableInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
