package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"

	// checkTimeout bounds each readiness check.
	checkTimeout = 2 * time.Second
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// HealthChecker serves the liveness, readiness and detailed health endpoints.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time

	mu     sync.RWMutex
	info   ToolsetInfo
	checks map[string]CheckFunc
}

// ToolsetInfo describes the configured toolset for the detailed health endpoint.
type ToolsetInfo struct {
	AuthMode  string   `json:"auth_mode"`
	Tier      string   `json:"tier,omitempty"`
	Services  []string `json:"services"`
	ToolCount int      `json:"tool_count"`
	ReadOnly  bool     `json:"read_only"`
}

// NewHealthChecker creates a checker that reports ready until SetReady(false).
// sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
		checks:        make(map[string]CheckFunc),
	}
	h.ready.Store(true)
	return h
}

func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// AddCheck registers a dependency probe run on every readiness request,
// for example the session store.
func (h *HealthChecker) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// SetToolsetInfo records the toolset reported by /healthz/detailed.
func (h *HealthChecker) SetToolsetInfo(info ToolsetInfo) {
	info.Services = append([]string(nil), info.Services...)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info = info
}

func (h *HealthChecker) toolsetInfo() ToolsetInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	info := h.info
	info.Services = append([]string(nil), h.info.Services...)
	return info
}

func (h *HealthChecker) isServerShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// evaluate runs every check and returns the per-check results and whether all passed.
func (h *HealthChecker) evaluate(ctx context.Context) (map[string]string, bool) {
	results := map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
	ok := true

	if !h.ready.Load() {
		results["ready"] = healthStatusNotReady
		ok = false
	}
	if h.isServerShuttingDown() {
		results["shutdown"] = healthStatusShuttingDown
		ok = false
	}

	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := check(checkCtx)
		cancel()
		if err != nil {
			results[name] = err.Error()
			ok = false
			continue
		}
		results[name] = healthStatusOK
	}
	return results, ok
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type DetailedHealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
	Toolset ToolsetInfo       `json:"toolset"`
}

// LivenessHandler always answers 200 while the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers 503 when the server is not ready, is shutting
// down or a registered check fails.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks, ok := h.evaluate(r.Context())
		if !ok {
			writeHealth(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusNotReady, Checks: checks})
			return
		}
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK, Checks: checks})
	})
}

// DetailedHealthHandler adds uptime and the configured toolset to the readiness result.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks, ok := h.evaluate(r.Context())
		resp := DetailedHealthResponse{
			Status:  healthStatusOK,
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
			Checks:  checks,
			Toolset: h.toolsetInfo(),
		}

		status := http.StatusOK
		switch {
		case h.isServerShuttingDown():
			resp.Status = healthStatusShuttingDown
			status = http.StatusServiceUnavailable
		case !ok:
			resp.Status = healthStatusNotReady
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, resp)
	})
}

// RegisterHealthEndpoints mounts /healthz, /readyz and /healthz/detailed.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
