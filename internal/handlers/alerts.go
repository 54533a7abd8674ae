package handlers

import (
	"net/http"
	"strconv"
	"time"

	"watchtower/internal/alert"
	"watchtower/internal/database"
	"watchtower/internal/trigger"
)

// AcknowledgeAlertRequest identifies the alert to acknowledge.
type AcknowledgeAlertRequest struct {
	AlertID string `json:"alert_id"`
}

// GetAlert retrieves an alert by ID.
func (h *Handlers) GetAlert(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	alertID, ok := requireQueryParam(w, r, "alert_id")
	if !ok {
		return
	}

	a, err := h.db.GetAlert(r.Context(), alertID)
	if err != nil {
		handleStoreError(w, err, "alert", alertID)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListAlerts retrieves alerts with filters, newest first.
// Query params: monitor_id, type, severity, acknowledged, since (RFC 3339),
// limit, offset.
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	filter, ok := parseAlertFilter(w, r)
	if !ok {
		return
	}

	result, err := h.db.ListAlerts(r.Context(), filter)
	if err != nil {
		handleStoreError(w, err, "alert", "")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseAlertFilter builds the list filter from query parameters, rejecting
// unknown enum values and malformed timestamps.
func parseAlertFilter(w http.ResponseWriter, r *http.Request) (database.AlertFilter, bool) {
	q := r.URL.Query()
	p := parsePagination(r)
	filter := database.AlertFilter{Limit: p.Limit, Offset: p.Offset}

	if v := q.Get("monitor_id"); v != "" {
		filter.MonitorID = &v
	}
	if v := q.Get("type"); v != "" {
		switch trigger.Kind(v) {
		case trigger.KindNewNarrative, trigger.KindNewEvent, trigger.KindVolumeSpike,
			trigger.KindSentimentShift, trigger.KindFactionEngagement:
			filter.Type = &v
		default:
			http.Error(w, "unknown alert type: "+v, http.StatusBadRequest)
			return filter, false
		}
	}
	if v := q.Get("severity"); v != "" {
		if !alert.ValidSeverity(v) {
			http.Error(w, "severity must be one of: low, medium, high, critical", http.StatusBadRequest)
			return filter, false
		}
		filter.Severity = &v
	}
	if v := q.Get("acknowledged"); v != "" {
		acked, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "acknowledged must be true or false", http.StatusBadRequest)
			return filter, false
		}
		filter.Acknowledged = &acked
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "since must be an RFC 3339 timestamp", http.StatusBadRequest)
			return filter, false
		}
		filter.Since = &since
	}

	return filter, true
}

// AcknowledgeAlert marks an alert acknowledged. Idempotent: repeating the
// call for an already-acknowledged alert succeeds.
func (h *Handlers) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req AcknowledgeAlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AlertID == "" {
		http.Error(w, "alert_id is required", http.StatusBadRequest)
		return
	}

	if err := h.db.AcknowledgeAlert(r.Context(), req.AlertID); err != nil {
		handleStoreError(w, err, "alert", req.AlertID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"alert_id": req.AlertID, "acknowledged": true})
}
