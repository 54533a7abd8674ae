// Package handlers provides test mocks for handler dependencies.
package handlers

import (
	"context"
	"time"

	"watchtower/internal/alert"
	"watchtower/internal/database"
	"watchtower/internal/monitor"
)

// mockRepository implements Repository interface for testing.
type mockRepository struct {
	// Callbacks for each method (set these to control behavior)
	CreateMonitorFn        func(ctx context.Context, m *monitor.Monitor) (*monitor.Monitor, error)
	GetMonitorFn           func(ctx context.Context, monitorID string) (*monitor.Monitor, error)
	ListMonitorsFn         func(ctx context.Context, limit, offset int) (*database.MonitorListResult, error)
	UpdateMonitorFn        func(ctx context.Context, monitorID string, m *monitor.Monitor, expectedVersion int) (*monitor.Monitor, error)
	ToggleMonitorEnabledFn func(ctx context.Context, monitorID string, enabled bool, expectedVersion int) (*monitor.Monitor, error)
	DeleteMonitorFn        func(ctx context.Context, monitorID string) error
	GetAlertFn             func(ctx context.Context, alertID string) (*alert.Alert, error)
	ListAlertsFn           func(ctx context.Context, filter database.AlertFilter) (*database.AlertListResult, error)
	AcknowledgeAlertFn     func(ctx context.Context, alertID string) error
}

func storedMonitor(monitorID string) *monitor.Monitor {
	return &monitor.Monitor{
		MonitorID: monitorID,
		Name:      "Baltic watch",
		Scope:     monitor.Scope{OrganizationIDs: []string{"org-1"}},
		Logic:     monitor.LogicOR,
		Triggers:  monitor.Triggers{NewNarrative: true},
		Enabled:   true,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (m *mockRepository) CreateMonitor(ctx context.Context, mon *monitor.Monitor) (*monitor.Monitor, error) {
	if m.CreateMonitorFn != nil {
		return m.CreateMonitorFn(ctx, mon)
	}
	created := *mon
	created.MonitorID = "m-1"
	created.Enabled = true
	created.Version = 1
	return &created, nil
}

func (m *mockRepository) GetMonitor(ctx context.Context, monitorID string) (*monitor.Monitor, error) {
	if m.GetMonitorFn != nil {
		return m.GetMonitorFn(ctx, monitorID)
	}
	return storedMonitor(monitorID), nil
}

func (m *mockRepository) ListMonitors(ctx context.Context, limit, offset int) (*database.MonitorListResult, error) {
	if m.ListMonitorsFn != nil {
		return m.ListMonitorsFn(ctx, limit, offset)
	}
	return &database.MonitorListResult{Monitors: []*monitor.Monitor{}, Total: 0, Limit: limit, Offset: offset}, nil
}

func (m *mockRepository) UpdateMonitor(ctx context.Context, monitorID string, mon *monitor.Monitor, expectedVersion int) (*monitor.Monitor, error) {
	if m.UpdateMonitorFn != nil {
		return m.UpdateMonitorFn(ctx, monitorID, mon, expectedVersion)
	}
	updated := *mon
	updated.MonitorID = monitorID
	updated.Version = expectedVersion + 1
	return &updated, nil
}

func (m *mockRepository) ToggleMonitorEnabled(ctx context.Context, monitorID string, enabled bool, expectedVersion int) (*monitor.Monitor, error) {
	if m.ToggleMonitorEnabledFn != nil {
		return m.ToggleMonitorEnabledFn(ctx, monitorID, enabled, expectedVersion)
	}
	toggled := storedMonitor(monitorID)
	toggled.Enabled = enabled
	toggled.Version = expectedVersion + 1
	return toggled, nil
}

func (m *mockRepository) DeleteMonitor(ctx context.Context, monitorID string) error {
	if m.DeleteMonitorFn != nil {
		return m.DeleteMonitorFn(ctx, monitorID)
	}
	return nil
}

func (m *mockRepository) GetAlert(ctx context.Context, alertID string) (*alert.Alert, error) {
	if m.GetAlertFn != nil {
		return m.GetAlertFn(ctx, alertID)
	}
	return &alert.Alert{AlertID: alertID, MonitorID: "m-1", Severity: alert.SeverityMedium}, nil
}

func (m *mockRepository) ListAlerts(ctx context.Context, filter database.AlertFilter) (*database.AlertListResult, error) {
	if m.ListAlertsFn != nil {
		return m.ListAlertsFn(ctx, filter)
	}
	return &database.AlertListResult{Alerts: []*alert.Alert{}, Total: 0, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (m *mockRepository) AcknowledgeAlert(ctx context.Context, alertID string) error {
	if m.AcknowledgeAlertFn != nil {
		return m.AcknowledgeAlertFn(ctx, alertID)
	}
	return nil
}

// mockReloader implements Reloader and counts reloads.
type mockReloader struct {
	ReloadFn func(ctx context.Context) error
	Reloads  int
}

func (m *mockReloader) ReloadNow(ctx context.Context) error {
	m.Reloads++
	if m.ReloadFn != nil {
		return m.ReloadFn(ctx)
	}
	return nil
}

// mockLedger implements Ledger and records forgotten monitors.
type mockLedger struct {
	ForgetFn  func(ctx context.Context, monitorID string) error
	Forgotten []string
}

func (m *mockLedger) ForgetMonitor(ctx context.Context, monitorID string) error {
	m.Forgotten = append(m.Forgotten, monitorID)
	if m.ForgetFn != nil {
		return m.ForgetFn(ctx, monitorID)
	}
	return nil
}

func newTestHandlers() (*Handlers, *mockRepository, *mockReloader, *mockLedger) {
	repo := &mockRepository{}
	reloader := &mockReloader{}
	ledger := &mockLedger{}
	return NewHandlers(repo, reloader, ledger), repo, reloader, ledger
}
