package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"watchtower/internal/handlers"
)

// The router tests exercise routing and middleware only; the handlers behind
// the routes are covered in the handlers package.
func newTestRouter() http.Handler {
	h := handlers.NewHandlers(nil, nil, nil)
	return NewRouter(h).Handler()
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", w.Body.String())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"delete on monitors collection", http.MethodDelete, "/api/v1/monitors"},
		{"get on update", http.MethodGet, "/api/v1/monitors/update"},
		{"get on toggle", http.MethodGet, "/api/v1/monitors/toggle"},
		{"post on delete", http.MethodPost, "/api/v1/monitors/delete"},
		{"post on alerts collection", http.MethodPost, "/api/v1/alerts"},
		{"get on acknowledge", http.MethodGet, "/api/v1/alerts/acknowledge"},
	}

	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", w.Code)
			}
		})
	}
}

func TestRouter_CORSHeaders(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/monitors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("Access-Control-Allow-Methods not set")
	}
}

func TestNewServer(t *testing.T) {
	server := NewServer("8080", handlers.NewHandlers(nil, nil, nil))
	if server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", server.Addr)
	}
	if server.Handler == nil {
		t.Error("Handler is nil")
	}
}
