package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"watchtower/internal/database"
	"watchtower/internal/monitor"
)

// handleStoreError maps persistence and validation errors to HTTP responses.
// Returns true if the error was handled.
func handleStoreError(w http.ResponseWriter, err error, resource, resourceID string) bool {
	if err == nil {
		return false
	}

	var validationErr *monitor.ValidationError
	if errors.As(err, &validationErr) {
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return true
	}

	switch {
	case errors.Is(err, database.ErrMonitorNotFound):
		http.Error(w, "Monitor not found", http.StatusNotFound)
	case errors.Is(err, database.ErrAlertNotFound):
		http.Error(w, "Alert not found", http.StatusNotFound)
	case errors.Is(err, database.ErrVersionMismatch):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, database.ErrAlreadyExists):
		http.Error(w, resource+" already exists", http.StatusConflict)
	default:
		slog.Error("Store error", "error", err, "resource", resource, "resource_id", resourceID)
		http.Error(w, "Failed to access "+resource, http.StatusInternalServerError)
	}
	return true
}

// reloadRegistry refreshes the registry after a monitor mutation.
// Failures are logged only: the poller will converge shortly anyway.
func (h *Handlers) reloadRegistry(r *http.Request) {
	if err := h.registry.ReloadNow(r.Context()); err != nil {
		slog.Error("Failed to reload monitor registry", "error", err)
	}
}
