package handlers

import (
	"log/slog"
	"net/http"

	"watchtower/internal/monitor"
)

// MonitorRequest carries the analyst-editable monitor fields for create and
// update requests.
type MonitorRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Scope       monitor.Scope    `json:"scope"`
	Logic       monitor.Logic    `json:"logic"`
	Options     monitor.Options  `json:"options"`
	Triggers    monitor.Triggers `json:"triggers"`
}

// UpdateMonitorRequest adds the optimistic locking version.
type UpdateMonitorRequest struct {
	MonitorRequest
	Version int `json:"version"`
}

// ToggleMonitorRequest enables or disables a monitor.
type ToggleMonitorRequest struct {
	Enabled bool `json:"enabled"`
	Version int  `json:"version"`
}

func (req *MonitorRequest) toMonitor() *monitor.Monitor {
	return &monitor.Monitor{
		Name:        req.Name,
		Description: req.Description,
		Scope:       req.Scope,
		Logic:       req.Logic,
		Options:     req.Options,
		Triggers:    req.Triggers,
	}
}

// CreateMonitor validates and creates a monitor.
func (h *Handlers) CreateMonitor(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req MonitorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m := req.toMonitor()
	if err := m.Validate(); err != nil {
		handleStoreError(w, err, "monitor", "")
		return
	}

	created, err := h.db.CreateMonitor(r.Context(), m)
	if err != nil {
		handleStoreError(w, err, "monitor", "")
		return
	}

	h.reloadRegistry(r)
	slog.Info("Monitor created", "monitor_id", created.MonitorID, "name", created.Name)
	writeJSON(w, http.StatusCreated, created)
}

// GetMonitor retrieves a monitor by ID.
func (h *Handlers) GetMonitor(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	monitorID, ok := requireQueryParam(w, r, "monitor_id")
	if !ok {
		return
	}

	m, err := h.db.GetMonitor(r.Context(), monitorID)
	if err != nil {
		handleStoreError(w, err, "monitor", monitorID)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListMonitors retrieves monitors with pagination.
func (h *Handlers) ListMonitors(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	p := parsePagination(r)
	result, err := h.db.ListMonitors(r.Context(), p.Limit, p.Offset)
	if err != nil {
		handleStoreError(w, err, "monitor", "")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateMonitor validates and updates a monitor using optimistic locking.
func (h *Handlers) UpdateMonitor(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}

	monitorID, ok := requireQueryParam(w, r, "monitor_id")
	if !ok {
		return
	}

	var req UpdateMonitorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m := req.toMonitor()
	if err := m.Validate(); err != nil {
		handleStoreError(w, err, "monitor", monitorID)
		return
	}

	updated, err := h.db.UpdateMonitor(r.Context(), monitorID, m, req.Version)
	if err != nil {
		handleStoreError(w, err, "monitor", monitorID)
		return
	}

	h.reloadRegistry(r)
	slog.Info("Monitor updated", "monitor_id", monitorID, "version", updated.Version)
	writeJSON(w, http.StatusOK, updated)
}

// ToggleMonitor enables or disables a monitor.
func (h *Handlers) ToggleMonitor(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	monitorID, ok := requireQueryParam(w, r, "monitor_id")
	if !ok {
		return
	}

	var req ToggleMonitorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.db.ToggleMonitorEnabled(r.Context(), monitorID, req.Enabled, req.Version)
	if err != nil {
		handleStoreError(w, err, "monitor", monitorID)
		return
	}

	h.reloadRegistry(r)
	slog.Info("Monitor toggled", "monitor_id", monitorID, "enabled", req.Enabled)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteMonitor deletes a monitor and drops its ledger state.
func (h *Handlers) DeleteMonitor(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}

	monitorID, ok := requireQueryParam(w, r, "monitor_id")
	if !ok {
		return
	}

	if err := h.db.DeleteMonitor(r.Context(), monitorID); err != nil {
		handleStoreError(w, err, "monitor", monitorID)
		return
	}

	if err := h.ledger.ForgetMonitor(r.Context(), monitorID); err != nil {
		slog.Error("Failed to drop ledger state for deleted monitor",
			"monitor_id", monitorID,
			"error", err,
		)
	}

	h.reloadRegistry(r)
	slog.Info("Monitor deleted", "monitor_id", monitorID)
	w.WriteHeader(http.StatusNoContent)
}
