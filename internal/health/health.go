package health

import (
	"net/http"
	"time"

	"github.com/drive-intranet/internal/httputil"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// ReadinessFunc reports whether the service can answer queries
type ReadinessFunc func() bool

// Handler provides health check endpoints
type Handler struct {
	ready ReadinessFunc
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// NewHandler creates health endpoints. A nil ready func means always ready.
func NewHandler(ready ReadinessFunc) *Handler {
	if ready == nil {
		ready = func() bool { return true }
	}
	return &Handler{ready: ready}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
	})
}

// Ready handles GET /ready. It answers 503 until the descendant index exists.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	if !h.ready() {
		status, code = "not ready", http.StatusServiceUnavailable
	}

	httputil.RespondJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   Version,
	})
}
