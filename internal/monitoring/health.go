package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

const maxHealthErrors = 20

// HealthChecker reports the progress of a long sweep over HTTP
type HealthChecker struct {
	mu        sync.RWMutex
	lastRun   time.Time
	completed int
	total     int
	errors    []string
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastRun   time.Time `json:"last_run"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Uptime    string    `json:"uptime"`
	Errors    []string  `json:"errors,omitempty"`
}

func NewHealthChecker(total int) *HealthChecker {
	return &HealthChecker{
		total:  total,
		errors: make([]string, 0),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if status.Status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// Status returns a snapshot of the checker
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "running"
	switch {
	case len(h.errors) > 0:
		status = "degraded"
	case h.total > 0 && h.completed >= h.total:
		status = "done"
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastRun:   h.lastRun,
		Completed: h.completed,
		Total:     h.total,
		Uptime:    time.Since(startTime).String(),
		Errors:    append([]string(nil), h.errors...),
	}
}

// SetTotal sets the number of runs expected
func (h *HealthChecker) SetTotal(total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total = total
}

// RunCompleted marks one run as finished
func (h *HealthChecker) RunCompleted() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed++
	h.lastRun = time.Now()
}

// AddError records a failed run, keeping the most recent ones
func (h *HealthChecker) AddError(err string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
	if len(h.errors) > maxHealthErrors {
		h.errors = h.errors[len(h.errors)-maxHealthErrors:]
	}
}

// NewMux serves /metrics and /health
func NewMux(m *Metrics, h *HealthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/health", h)
	return mux
}
