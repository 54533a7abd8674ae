package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"watchtower/internal/alert"
	"watchtower/internal/trigger"
)

const alertColumns = `alert_id, monitor_id, type, title, description, severity, triggered_at, acknowledged,
		related_narrative_ids, related_sub_narrative_ids, related_event_ids, metadata`

// AlertFilter narrows ListAlerts. Nil fields are not applied.
type AlertFilter struct {
	MonitorID    *string
	Type         *string
	Severity     *string
	Acknowledged *bool
	Since        *time.Time
	Limit        int
	Offset       int
}

// AlertListResult holds a page of alerts with pagination metadata.
type AlertListResult struct {
	Alerts []*alert.Alert `json:"alerts"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func scanAlert(row interface {
	Scan(dest ...interface{}) error
}) (*alert.Alert, error) {
	var a alert.Alert
	var kind string
	var metadataJSON sql.NullString

	err := row.Scan(
		&a.AlertID,
		&a.MonitorID,
		&kind,
		&a.Title,
		&a.Description,
		&a.Severity,
		&a.TriggeredAt,
		&a.Acknowledged,
		pq.Array(&a.RelatedNarrativeIDs),
		pq.Array(&a.RelatedSubNarrativeIDs),
		pq.Array(&a.RelatedEventIDs),
		&metadataJSON,
	)
	if err != nil {
		return nil, err
	}
	a.Type = trigger.Kind(kind)

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &a.Metadata); err != nil {
			slog.Warn("Failed to unmarshal alert metadata", "alert_id", a.AlertID, "error", err)
			a.Metadata = nil
		}
	}
	return &a, nil
}

// InsertAlert persists a new alert. The insert is idempotent on alert_id:
// a unique violation means a concurrent path already persisted it, which is
// reported as ErrAlreadyExists so callers can skip the duplicate quietly.
func (db *DB) InsertAlert(ctx context.Context, a *alert.Alert) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal alert metadata: %w", err)
	}

	query := `
		INSERT INTO alerts (alert_id, monitor_id, type, title, description, severity, triggered_at, acknowledged,
			related_narrative_ids, related_sub_narrative_ids, related_event_ids, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9, $10, $11)
	`
	_, err = db.conn.ExecContext(ctx, query,
		a.AlertID,
		a.MonitorID,
		string(a.Type),
		a.Title,
		a.Description,
		string(a.Severity),
		a.TriggeredAt,
		pq.Array(a.RelatedNarrativeIDs),
		pq.Array(a.RelatedSubNarrativeIDs),
		pq.Array(a.RelatedEventIDs),
		metadata,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("%w: alert %s", ErrAlreadyExists, a.AlertID)
			}
			if pqErr.Code == "23503" { // foreign_key_violation
				return fmt.Errorf("%w: %s", ErrMonitorNotFound, a.MonitorID)
			}
		}
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetAlert retrieves an alert by ID.
func (db *DB) GetAlert(ctx context.Context, alertID string) (*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE alert_id = $1`

	a, err := scanAlert(db.conn.QueryRowContext(ctx, query, alertID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return a, nil
}

// ListAlerts retrieves alerts matching the filter, newest first.
func (db *DB) ListAlerts(ctx context.Context, filter AlertFilter) (*AlertListResult, error) {
	where, args := buildAlertFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM alerts` + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := `SELECT ` + alertColumns + ` FROM alerts` + where +
		` ORDER BY triggered_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*alert.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &AlertListResult{Alerts: alerts, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// buildAlertFilter builds the WHERE clause and arguments for the filter.
func buildAlertFilter(filter AlertFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.MonitorID != nil {
		add("monitor_id = $%d", *filter.MonitorID)
	}
	if filter.Type != nil {
		add("type = $%d", *filter.Type)
	}
	if filter.Severity != nil {
		add("severity = $%d", *filter.Severity)
	}
	if filter.Acknowledged != nil {
		add("acknowledged = $%d", *filter.Acknowledged)
	}
	if filter.Since != nil {
		add("triggered_at >= $%d", *filter.Since)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// AcknowledgeAlert marks an alert acknowledged. Idempotent: acknowledging an
// already-acknowledged alert succeeds. Returns ErrAlertNotFound for unknown ids.
func (db *DB) AcknowledgeAlert(ctx context.Context, alertID string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE alerts SET acknowledged = TRUE WHERE alert_id = $1`, alertID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check acknowledge result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	return nil
}
