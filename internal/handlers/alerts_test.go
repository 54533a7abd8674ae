package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"watchtower/internal/alert"
	"watchtower/internal/database"
)

func TestHandlers_GetAlert(t *testing.T) {
	h, repo, _, _ := newTestHandlers()

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?alert_id=a-1", nil)
		w := httptest.NewRecorder()
		h.GetAlert(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var a alert.Alert
		if err := json.Unmarshal(w.Body.Bytes(), &a); err != nil {
			t.Fatalf("response decode error = %v", err)
		}
		if a.AlertID != "a-1" {
			t.Errorf("AlertID = %q, want a-1", a.AlertID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo.GetAlertFn = func(_ context.Context, alertID string) (*alert.Alert, error) {
			return nil, fmt.Errorf("%w: %s", database.ErrAlertNotFound, alertID)
		}
		defer func() { repo.GetAlertFn = nil }()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?alert_id=a-x", nil)
		w := httptest.NewRecorder()
		h.GetAlert(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("missing query param", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
		w := httptest.NewRecorder()
		h.GetAlert(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandlers_ListAlerts(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		check      func(t *testing.T, filter database.AlertFilter)
	}{
		{
			name:       "no filters",
			query:      "",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, filter database.AlertFilter) {
				if filter.MonitorID != nil || filter.Type != nil || filter.Severity != nil ||
					filter.Acknowledged != nil || filter.Since != nil {
					t.Errorf("filter = %+v, want all nil", filter)
				}
				if filter.Limit != 50 {
					t.Errorf("Limit = %d, want default 50", filter.Limit)
				}
			},
		},
		{
			name:       "all filters",
			query:      "?monitor_id=m-1&type=volume_spike&severity=high&acknowledged=false&since=2026-08-01T00:00:00Z&limit=10",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, filter database.AlertFilter) {
				if filter.MonitorID == nil || *filter.MonitorID != "m-1" {
					t.Error("MonitorID not applied")
				}
				if filter.Type == nil || *filter.Type != "volume_spike" {
					t.Error("Type not applied")
				}
				if filter.Severity == nil || *filter.Severity != "high" {
					t.Error("Severity not applied")
				}
				if filter.Acknowledged == nil || *filter.Acknowledged != false {
					t.Error("Acknowledged not applied")
				}
				want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
				if filter.Since == nil || !filter.Since.Equal(want) {
					t.Error("Since not applied")
				}
				if filter.Limit != 10 {
					t.Errorf("Limit = %d, want 10", filter.Limit)
				}
			},
		},
		{
			name:       "unknown type rejected",
			query:      "?type=volume_tsunami",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown severity rejected",
			query:      "?severity=URGENT",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed acknowledged rejected",
			query:      "?acknowledged=maybe",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed since rejected",
			query:      "?since=yesterday",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo, _, _ := newTestHandlers()
			var gotFilter database.AlertFilter
			repo.ListAlertsFn = func(_ context.Context, filter database.AlertFilter) (*database.AlertListResult, error) {
				gotFilter = filter
				return &database.AlertListResult{Alerts: []*alert.Alert{}, Limit: filter.Limit, Offset: filter.Offset}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts"+tt.query, nil)
			w := httptest.NewRecorder()
			h.ListAlerts(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.check != nil {
				tt.check(t, gotFilter)
			}
		})
	}
}

func TestHandlers_AcknowledgeAlert(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupRepo  func(repo *mockRepository)
		wantStatus int
	}{
		{
			name:       "successful acknowledge",
			body:       `{"alert_id": "a-1"}`,
			wantStatus: http.StatusOK,
		},
		{
			// The store treats re-acknowledgement as success, so the handler
			// returns 200 both times.
			name:       "repeat acknowledge succeeds",
			body:       `{"alert_id": "a-1"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing alert id",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{nope`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown alert maps to 404",
			body: `{"alert_id": "a-x"}`,
			setupRepo: func(repo *mockRepository) {
				repo.AcknowledgeAlertFn = func(_ context.Context, alertID string) error {
					return fmt.Errorf("%w: %s", database.ErrAlertNotFound, alertID)
				}
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo, _, _ := newTestHandlers()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/acknowledge", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.AcknowledgeAlert(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var resp map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("response decode error = %v", err)
				}
				if resp["acknowledged"] != true {
					t.Errorf("acknowledged = %v, want true", resp["acknowledged"])
				}
			}
		})
	}
}
