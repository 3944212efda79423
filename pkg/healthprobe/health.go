// Package healthprobe serves liveness and readiness endpoints.
package healthprobe

import (
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// Component status values.
const (
	StatusUp       = "up"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// Check reports the status of one dependency and a short detail line.
// A critical check that reports StatusDown makes the service not ready;
// a non-critical one only shows up in the readiness body.
type Check func() (status string, detail string)

type namedCheck struct {
	check    Check
	critical bool
}

// HealthChecker provides health and readiness checks.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool

	mu     sync.RWMutex
	checks map[string]namedCheck
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		checks:    make(map[string]namedCheck),
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Register adds a named dependency check to the readiness report.
func (h *HealthChecker) Register(name string, critical bool, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = namedCheck{check: check, critical: critical}
}

// ComponentStatus is one entry of the readiness report.
type ComponentStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Uptime     string                     `json:"uptime"`
	Message    string                     `json:"message,omitempty"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// evaluate runs every registered check. ok is false when a critical check is down.
func (h *HealthChecker) evaluate() (components map[string]ComponentStatus, ok bool, failing []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ok = true
	if len(h.checks) == 0 {
		return nil, ok, nil
	}

	components = make(map[string]ComponentStatus, len(h.checks))
	for name, c := range h.checks {
		status, detail := c.check()
		components[name] = ComponentStatus{Status: status, Detail: detail}
		if c.critical && status == StatusDown {
			ok = false
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)
	return components, ok, failing
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Message: "application is starting",
			})
			return
		}

		components, ok, failing := h.evaluate()
		resp := HealthResponse{
			Status:     "ready",
			Uptime:     time.Since(h.startTime).String(),
			Components: components,
		}
		if !ok {
			resp.Status = "not_ready"
			resp.Message = "critical dependency down: " + failing[0]
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
