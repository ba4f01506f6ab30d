// Package analytics implements the local usage analytics sink (SPEC_FULL
// "Local usage analytics"): one row per Record call, recorded to an embedded
// duckdb table and exportable to Parquet for offline analysis. The search
// path does not call Record, so rows come only from direct callers. Pure
// observability — it never influences scoring or ranking.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/driftmind/driftmind/internal/common"
)

const stage = "analytics"

// SearchEvent is one row of search telemetry.
type SearchEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	QueryLength    int       `json:"query_length"`
	Expanded       bool      `json:"expanded"`
	ResultCount    int       `json:"result_count"`
	TopScore       float64   `json:"top_score"`
	LatencyMillis  int64     `json:"latency_millis"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// Sink appends SearchEvent rows to an embedded duckdb database.
type Sink struct {
	db *sql.DB
}

// NewSink opens (creating if absent) a duckdb database file at path and
// ensures the search_events table exists.
func NewSink(path string) (*Sink, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb analytics sink: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS search_events (
		timestamp TIMESTAMP,
		query_length INTEGER,
		expanded BOOLEAN,
		result_count INTEGER,
		top_score DOUBLE,
		latency_millis BIGINT,
		success BOOLEAN,
		error_message VARCHAR
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create search_events table: %w", err)
	}

	return &Sink{db: db}, nil
}

// Record appends one SearchEvent; failures are logged and swallowed, since
// analytics must never fail or slow down a search request.
func (s *Sink) Record(ctx context.Context, event SearchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	const insert = `INSERT INTO search_events
		(timestamp, query_length, expanded, result_count, top_score, latency_millis, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, insert,
		event.Timestamp, event.QueryLength, event.Expanded, event.ResultCount,
		event.TopScore, event.LatencyMillis, event.Success, event.ErrorMessage,
	); err != nil {
		common.PipelineWarn(ctx, stage, "record search event failed", map[string]interface{}{"error": err.Error()})
	}
}

// All returns every recorded event, oldest first, for Parquet export.
func (s *Sink) All(ctx context.Context) ([]SearchEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, query_length, expanded, result_count,
		top_score, latency_millis, success, error_message FROM search_events ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("query search_events: %w", err)
	}
	defer rows.Close()

	var events []SearchEvent
	for rows.Next() {
		var e SearchEvent
		if err := rows.Scan(&e.Timestamp, &e.QueryLength, &e.Expanded, &e.ResultCount,
			&e.TopScore, &e.LatencyMillis, &e.Success, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan search event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying duckdb connection.
func (s *Sink) Close() error {
	return s.db.Close()
}
