// Package handlers provides HTTP handlers for the monitor and alert API.
package handlers

import (
	"context"

	"watchtower/internal/alert"
	"watchtower/internal/database"
	"watchtower/internal/monitor"
)

// Repository defines the persistence operations the handlers need.
// This allows handlers to be tested without a real database.
type Repository interface {
	// Monitor operations
	CreateMonitor(ctx context.Context, m *monitor.Monitor) (*monitor.Monitor, error)
	GetMonitor(ctx context.Context, monitorID string) (*monitor.Monitor, error)
	ListMonitors(ctx context.Context, limit, offset int) (*database.MonitorListResult, error)
	UpdateMonitor(ctx context.Context, monitorID string, m *monitor.Monitor, expectedVersion int) (*monitor.Monitor, error)
	ToggleMonitorEnabled(ctx context.Context, monitorID string, enabled bool, expectedVersion int) (*monitor.Monitor, error)
	DeleteMonitor(ctx context.Context, monitorID string) error

	// Alert operations
	GetAlert(ctx context.Context, alertID string) (*alert.Alert, error)
	ListAlerts(ctx context.Context, filter database.AlertFilter) (*database.AlertListResult, error)
	AcknowledgeAlert(ctx context.Context, alertID string) error
}

// Reloader refreshes the in-memory monitor registry after a CRUD mutation so
// the change takes effect before the next poll.
type Reloader interface {
	ReloadNow(ctx context.Context) error
}

// Ledger is the slice of the debounce store the handlers touch: dropping
// state for deleted monitors.
type Ledger interface {
	ForgetMonitor(ctx context.Context, monitorID string) error
}

// Handlers wraps dependencies for HTTP handlers.
type Handlers struct {
	db       Repository
	registry Reloader
	ledger   Ledger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(db Repository, registry Reloader, ledger Ledger) *Handlers {
	return &Handlers{
		db:       db,
		registry: registry,
		ledger:   ledger,
	}
}
