// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pulselog/pulselog/internal/metrics"
	"github.com/pulselog/pulselog/internal/models"
)

// Aggregate window defaults.
const (
	HourlyStatsWindow = 24 * time.Hour
	DefaultDaysBack   = 30
)

const statsColumns = `bucket, app_id, event_type, total, success_count,
	error_count, unique_users, avg_duration_ms, max_duration_ms`

// QueryStats reads the hourly (last 24h) and daily rollups, optionally
// filtered by app id. The rollup views are recomputed by the store on read;
// this subsystem never writes them.
func (m *Manager) QueryStats(ctx context.Context, opts models.StatsOptions) (*models.Stats, error) {
	conn := m.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	daysBack := opts.DaysBack
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}

	now := time.Now().UTC()

	hourly, err := m.queryBuckets(ctx, conn, "logs_hourly", opts.AppID, now.Add(-HourlyStatsWindow))
	if err != nil {
		return nil, err
	}

	daily, err := m.queryBuckets(ctx, conn, "logs_daily", opts.AppID, now.AddDate(0, 0, -daysBack))
	if err != nil {
		return nil, err
	}

	return &models.Stats{Hourly: hourly, Daily: daily}, nil
}

// queryBuckets reads one rollup view since the cutoff. The view name is one
// of two compile-time constants, never caller input.
func (m *Manager) queryBuckets(ctx context.Context, conn *sql.DB, view, appID string, since time.Time) ([]models.StatsBucket, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE bucket >= ?", statsColumns, view)
	args := []interface{}{since}
	if appID != "" {
		query += " AND app_id = ?"
		args = append(args, appID)
	}
	query += " ORDER BY bucket ASC"

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	metrics.ObserveStoreQuery("stats_"+view, start, err)
	if err != nil {
		if isConnectionError(err) {
			m.markDisconnected()
		}
		return nil, fmt.Errorf("failed to query %s: %w", view, err)
	}
	defer closeWithLog(rows, view+" rows")

	buckets := []models.StatsBucket{}
	for rows.Next() {
		var (
			b         models.StatsBucket
			eventType string
		)
		err := rows.Scan(
			&b.Bucket, &b.AppID, &eventType, &b.Total, &b.SuccessCount,
			&b.ErrorCount, &b.UniqueUsers, &b.AvgDurationMs, &b.MaxDurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", view, err)
		}
		b.EventType = models.EventType(eventType)
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s iteration failed: %w", view, err)
	}

	return buckets, nil
}
