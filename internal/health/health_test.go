package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_Health(t *testing.T) {
	handler := NewHandler(func() bool { return false })

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", response.Status)
	}
	if response.Version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got '%s'", response.Version)
	}
	if response.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		ready          ReadinessFunc
		expectedCode   int
		expectedStatus string
	}{
		{
			name:           "index built",
			ready:          func() bool { return true },
			expectedCode:   http.StatusOK,
			expectedStatus: "ready",
		},
		{
			name:           "index missing",
			ready:          func() bool { return false },
			expectedCode:   http.StatusServiceUnavailable,
			expectedStatus: "not ready",
		},
		{
			name:           "no readiness check",
			ready:          nil,
			expectedCode:   http.StatusOK,
			expectedStatus: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(tt.ready)

			w := httptest.NewRecorder()
			handler.Ready(w, httptest.NewRequest("GET", "/ready", nil))

			if w.Code != tt.expectedCode {
				t.Errorf("Expected status code %d, got %d", tt.expectedCode, w.Code)
			}

			var response HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Status != tt.expectedStatus {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedStatus, response.Status)
			}
		})
	}
}

func TestHandler_ReadyTracksState(t *testing.T) {
	built := false
	handler := NewHandler(func() bool { return built })

	w := httptest.NewRecorder()
	handler.Ready(w, httptest.NewRequest("GET", "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the index is built, got %d", w.Code)
	}

	built = true
	w = httptest.NewRecorder()
	handler.Ready(w, httptest.NewRequest("GET", "/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 once the index is built, got %d", w.Code)
	}
}
