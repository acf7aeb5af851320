package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRouter(t *testing.T) {
	router := NewRouter(RouterConfig{})

	if router == nil {
		t.Fatal("Expected router to be created")
	}
}

func TestPingEndpoint(t *testing.T) {
	handler := NewRouter(RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for ping endpoint, got %d", w.Code)
	}

	if w.Body.String() != "." {
		t.Errorf("Expected ping response '.', got %s", w.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	handler := NewRouter(RouterConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for OPTIONS, got %d", w.Code)
	}

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS allow origin header")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/audit"},
		{http.MethodGet, "/api/analyze/consent"},
		{http.MethodPost, "/api/health"},
	}

	handler := NewRouter(RouterConfig{})

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected status 405, got %d", w.Code)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	handler := NewRouter(RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
