// Pulselog - Event Logging and Real-Time Security Alerting
// Copyright 2026 Pulselog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulselog/pulselog

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the append-only logs table and the rollup views.
//
// The rollups are views over the base table, so the store recomputes them on
// every read and this subsystem never writes them. Metadata is stored as
// JSON text; DuckDB parses it on demand.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS logs (
		id UUID PRIMARY KEY,
		event_type VARCHAR NOT NULL,
		event_subtype VARCHAR,
		app_id VARCHAR NOT NULL,
		user_id VARCHAR,
		ip_address VARCHAR,
		fingerprint VARCHAR,
		user_agent VARCHAR,
		request_method VARCHAR,
		request_path VARCHAR,
		status_code INTEGER,
		duration_ms INTEGER,
		message VARCHAR,
		metadata VARCHAR,
		success BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_app_type ON logs (app_id, event_type)`,

	`CREATE OR REPLACE VIEW logs_hourly AS
	SELECT
		date_trunc('hour', created_at) AS bucket,
		app_id,
		event_type,
		COUNT(*) AS total,
		SUM(CASE WHEN success THEN 1 ELSE 0 END) AS success_count,
		SUM(CASE WHEN success THEN 0 ELSE 1 END) AS error_count,
		COUNT(DISTINCT user_id) AS unique_users,
		COALESCE(AVG(duration_ms), 0) AS avg_duration_ms,
		COALESCE(MAX(duration_ms), 0) AS max_duration_ms
	FROM logs
	GROUP BY 1, 2, 3`,

	`CREATE OR REPLACE VIEW logs_daily AS
	SELECT
		date_trunc('day', created_at) AS bucket,
		app_id,
		event_type,
		COUNT(*) AS total,
		SUM(CASE WHEN success THEN 1 ELSE 0 END) AS success_count,
		SUM(CASE WHEN success THEN 0 ELSE 1 END) AS error_count,
		COUNT(DISTINCT user_id) AS unique_users,
		COALESCE(AVG(duration_ms), 0) AS avg_duration_ms,
		COALESCE(MAX(duration_ms), 0) AS max_duration_ms
	FROM logs
	GROUP BY 1, 2, 3`,
}

// createSchema applies the schema statements. All statements are idempotent.
func createSchema(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
