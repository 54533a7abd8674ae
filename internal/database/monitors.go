package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"watchtower/internal/monitor"
)

const monitorColumns = `monitor_id, name, description, scope, logic, options, triggers, enabled, version, last_triggered, created_at, updated_at`

// MonitorListResult holds a page of monitors with pagination metadata.
type MonitorListResult struct {
	Monitors []*monitor.Monitor `json:"monitors"`
	Total    int                `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// scanMonitor scans one monitor row, decoding the JSONB columns.
func scanMonitor(row interface {
	Scan(dest ...interface{}) error
}) (*monitor.Monitor, error) {
	var m monitor.Monitor
	var scopeJSON, optionsJSON, triggersJSON []byte
	var lastTriggered sql.NullTime

	err := row.Scan(
		&m.MonitorID,
		&m.Name,
		&m.Description,
		&scopeJSON,
		&m.Logic,
		&optionsJSON,
		&triggersJSON,
		&m.Enabled,
		&m.Version,
		&lastTriggered,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scopeJSON, &m.Scope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monitor scope: %w", err)
	}
	if err := json.Unmarshal(optionsJSON, &m.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monitor options: %w", err)
	}
	if err := json.Unmarshal(triggersJSON, &m.Triggers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monitor triggers: %w", err)
	}
	if lastTriggered.Valid {
		t := lastTriggered.Time
		m.LastTriggered = &t
	}
	return &m, nil
}

// marshalMonitorConfig serializes the JSONB columns of a monitor.
func marshalMonitorConfig(m *monitor.Monitor) (scope, options, triggers []byte, err error) {
	if scope, err = json.Marshal(m.Scope); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal monitor scope: %w", err)
	}
	if options, err = json.Marshal(m.Options); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal monitor options: %w", err)
	}
	if triggers, err = json.Marshal(m.Triggers); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal monitor triggers: %w", err)
	}
	return scope, options, triggers, nil
}

// CreateMonitor creates a new monitor and returns it with the generated id
// and version.
func (db *DB) CreateMonitor(ctx context.Context, m *monitor.Monitor) (*monitor.Monitor, error) {
	scope, options, triggers, err := marshalMonitorConfig(m)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO monitors (name, description, scope, logic, options, triggers, enabled, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, 1, NOW(), NOW())
		RETURNING ` + monitorColumns

	created, err := scanMonitor(db.conn.QueryRowContext(ctx, query, m.Name, m.Description, scope, string(m.Logic), options, triggers))
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	return created, nil
}

// GetMonitor retrieves a monitor by ID.
func (db *DB) GetMonitor(ctx context.Context, monitorID string) (*monitor.Monitor, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitors WHERE monitor_id = $1`

	m, err := scanMonitor(db.conn.QueryRowContext(ctx, query, monitorID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrMonitorNotFound, monitorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monitor: %w", err)
	}
	return m, nil
}

// ListMonitors retrieves monitors with pagination, newest first.
func (db *DB) ListMonitors(ctx context.Context, limit, offset int) (*MonitorListResult, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM monitors`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count monitors: %w", err)
	}

	query := `SELECT ` + monitorColumns + ` FROM monitors ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list monitors: %w", err)
	}
	defer rows.Close()

	monitors := []*monitor.Monitor{}
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitor: %w", err)
		}
		monitors = append(monitors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &MonitorListResult{Monitors: monitors, Total: total, Limit: limit, Offset: offset}, nil
}

// ListEnabledMonitors retrieves all enabled monitors for the registry.
func (db *DB) ListEnabledMonitors(ctx context.Context) ([]*monitor.Monitor, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitors WHERE enabled = TRUE ORDER BY created_at`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled monitors: %w", err)
	}
	defer rows.Close()

	var monitors []*monitor.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitor: %w", err)
		}
		monitors = append(monitors, m)
	}
	return monitors, rows.Err()
}

// MonitorsFingerprint returns the monitor count and latest update time.
// The registry polls this to detect configuration drift cheaply.
func (db *DB) MonitorsFingerprint(ctx context.Context) (int, time.Time, error) {
	var count int
	var maxUpdated sql.NullTime
	query := `SELECT COUNT(*), MAX(updated_at) FROM monitors`
	if err := db.conn.QueryRowContext(ctx, query).Scan(&count, &maxUpdated); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to fingerprint monitors: %w", err)
	}
	return count, maxUpdated.Time, nil
}

// UpdateMonitor updates a monitor's definition using optimistic locking.
// Returns ErrVersionMismatch if the expected version doesn't match.
func (db *DB) UpdateMonitor(ctx context.Context, monitorID string, m *monitor.Monitor, expectedVersion int) (*monitor.Monitor, error) {
	scope, options, triggers, err := marshalMonitorConfig(m)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE monitors
		SET name = $1, description = $2, scope = $3, logic = $4, options = $5, triggers = $6,
		    version = version + 1, updated_at = NOW()
		WHERE monitor_id = $7 AND version = $8
		RETURNING ` + monitorColumns

	updated, err := scanMonitor(db.conn.QueryRowContext(ctx, query,
		m.Name, m.Description, scope, string(m.Logic), options, triggers, monitorID, expectedVersion))
	if err == sql.ErrNoRows {
		return nil, db.monitorConflict(ctx, monitorID, expectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update monitor: %w", err)
	}
	return updated, nil
}

// ToggleMonitorEnabled enables or disables a monitor using optimistic locking.
func (db *DB) ToggleMonitorEnabled(ctx context.Context, monitorID string, enabled bool, expectedVersion int) (*monitor.Monitor, error) {
	query := `
		UPDATE monitors
		SET enabled = $1, version = version + 1, updated_at = NOW()
		WHERE monitor_id = $2 AND version = $3
		RETURNING ` + monitorColumns

	updated, err := scanMonitor(db.conn.QueryRowContext(ctx, query, enabled, monitorID, expectedVersion))
	if err == sql.ErrNoRows {
		return nil, db.monitorConflict(ctx, monitorID, expectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle monitor: %w", err)
	}
	return updated, nil
}

// monitorConflict distinguishes a stale version from a missing monitor.
func (db *DB) monitorConflict(ctx context.Context, monitorID string, expectedVersion int) error {
	current, err := db.GetMonitor(ctx, monitorID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: monitor %s is at version %d, expected %d",
		ErrVersionMismatch, monitorID, current.Version, expectedVersion)
}

// DeleteMonitor deletes a monitor by ID.
func (db *DB) DeleteMonitor(ctx context.Context, monitorID string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM monitors WHERE monitor_id = $1`, monitorID)
	if err != nil {
		return fmt.Errorf("failed to delete monitor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrMonitorNotFound, monitorID)
	}
	return nil
}

// TouchLastTriggered records that a monitor fired. This is the only monitor
// field the engine itself mutates, so it bypasses the version counter.
func (db *DB) TouchLastTriggered(ctx context.Context, monitorID string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE monitors SET last_triggered = $1 WHERE monitor_id = $2`, at, monitorID)
	if err != nil {
		return fmt.Errorf("failed to update last_triggered: %w", err)
	}
	return nil
}
