// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies an event record.
type EventType string

// Event types accepted by the pipeline.
const (
	EventRequest     EventType = "request"
	EventError       EventType = "error"
	EventAuthSuccess EventType = "auth_success"
	EventAuthFailed  EventType = "auth_failed"
	EventMetric      EventType = "metric"
	EventSystem      EventType = "system"
)

// ValidEventTypes lists every accepted event type, in declaration order.
var ValidEventTypes = []EventType{
	EventRequest,
	EventError,
	EventAuthSuccess,
	EventAuthFailed,
	EventMetric,
	EventSystem,
}

// IsValid reports whether t is one of the accepted event types.
func (t EventType) IsValid() bool {
	for _, v := range ValidEventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// LogRecord is the write-side input to the pipeline. All fields except
// EventType are optional; AppID defaults from process configuration and
// Success defaults to true when nil.
type LogRecord struct {
	EventType     EventType              `json:"event_type" validate:"required"`
	EventSubtype  string                 `json:"event_subtype,omitempty"`
	AppID         string                 `json:"app_id,omitempty"`
	UserID        string                 `json:"user_id,omitempty"`
	IPAddress     string                 `json:"ip_address,omitempty"`
	Fingerprint   string                 `json:"fingerprint,omitempty"`
	UserAgent     string                 `json:"user_agent,omitempty"`
	RequestMethod string                 `json:"request_method,omitempty"`
	RequestPath   string                 `json:"request_path,omitempty"`
	StatusCode    int                    `json:"status_code,omitempty"`
	DurationMs    int                    `json:"duration_ms,omitempty"`
	Message       string                 `json:"message,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Success       *bool                  `json:"success,omitempty"`
}

// IsSuccess resolves the success flag, applying the default-true rule.
func (r *LogRecord) IsSuccess() bool {
	return r.Success == nil || *r.Success
}

// LogEntry is the persisted, read-side form of a record. Entries are
// immutable once written; the pipeline never updates or deletes them.
type LogEntry struct {
	ID            uuid.UUID              `json:"id"`
	EventType     EventType              `json:"event_type"`
	EventSubtype  string                 `json:"event_subtype,omitempty"`
	AppID         string                 `json:"app_id"`
	UserID        string                 `json:"user_id,omitempty"`
	IPAddress     string                 `json:"ip_address,omitempty"`
	Fingerprint   string                 `json:"fingerprint,omitempty"`
	UserAgent     string                 `json:"user_agent,omitempty"`
	RequestMethod string                 `json:"request_method,omitempty"`
	RequestPath   string                 `json:"request_path,omitempty"`
	StatusCode    int                    `json:"status_code,omitempty"`
	DurationMs    int                    `json:"duration_ms,omitempty"`
	Message       string                 `json:"message,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Success       bool                   `json:"success"`
	CreatedAt     time.Time              `json:"created_at"`
}

// LogQuery carries the optional filters for paginated log queries.
// Zero values mean "no filter"; Success uses a pointer so false is
// distinguishable from unset.
type LogQuery struct {
	AppID     string
	EventType EventType
	UserID    string
	Success   *bool
	From      *time.Time
	To        *time.Time
	OrderBy   string
	SortDir   string
	Limit     int
	Offset    int
}

// LogPage is the result of a filtered log query. Count is the total number
// of rows matching the filter, independent of limit/offset.
type LogPage struct {
	Count int64      `json:"count"`
	Rows  []LogEntry `json:"rows"`
}

// EmptyLogPage returns the degraded-mode query result.
func EmptyLogPage() *LogPage {
	return &LogPage{Count: 0, Rows: []LogEntry{}}
}

// StatsOptions filters aggregate queries.
type StatsOptions struct {
	AppID    string
	DaysBack int
}

// StatsBucket is one precomputed rollup row (hourly or daily).
type StatsBucket struct {
	Bucket        time.Time `json:"bucket"`
	AppID         string    `json:"app_id"`
	EventType     EventType `json:"event_type"`
	Total         int64     `json:"total"`
	SuccessCount  int64     `json:"success_count"`
	ErrorCount    int64     `json:"error_count"`
	UniqueUsers   int64     `json:"unique_users"`
	AvgDurationMs float64   `json:"avg_duration_ms"`
	MaxDurationMs float64   `json:"max_duration_ms"`
}

// Stats bundles the hourly and daily rollups served to dashboards.
type Stats struct {
	Hourly []StatsBucket `json:"hourly"`
	Daily  []StatsBucket `json:"daily"`
}

// EmptyStats returns the degraded-mode aggregate result.
func EmptyStats() *Stats {
	return &Stats{Hourly: []StatsBucket{}, Daily: []StatsBucket{}}
}

// RecentErrorsOptions filters the recent-errors query.
type RecentErrorsOptions struct {
	AppID       string
	Limit       int
	MinutesBack int
}

// RawResult is the outcome of the constrained raw-query escape hatch.
type RawResult struct {
	RowCount int                      `json:"row_count"`
	Rows     []map[string]interface{} `json:"rows"`
}

// EmptyRawResult returns the degraded-mode raw-query result.
func EmptyRawResult() *RawResult {
	return &RawResult{RowCount: 0, Rows: []map[string]interface{}{}}
}

// AlertPayload is the severity-agnostic body of a threshold alert.
// It is constructed fresh per threshold crossing and never stored.
type AlertPayload struct {
	IPAddress    string `json:"ip_address"`
	Fingerprint  string `json:"fingerprint,omitempty"`
	FailureCount int    `json:"failure_count"`
	Timestamp    string `json:"timestamp"`
}
