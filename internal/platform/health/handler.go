// Package health serves liveness, readiness and status probes.
//
// Readiness distinguishes two kinds of dependency. A failing required
// check makes the process unready (503). A failing advisory check only
// marks it degraded: the BFF keeps serving frames while the credit backend
// is down, it just cannot load new data.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"creditboard/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const checkTimeout = 2 * time.Second

const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

type check struct {
	name     string
	fn       CheckFunc
	required bool
}

type Handler struct {
	startTime   time.Time
	environment string
	now         func() time.Time

	mu     sync.RWMutex
	checks []check
}

func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		now:         time.Now,
	}
}

// RegisterCheck adds a dependency the process cannot serve without.
func (h *Handler) RegisterCheck(name string, fn CheckFunc) {
	h.add(check{name: name, fn: fn, required: true})
}

// RegisterAdvisory adds a dependency whose failure degrades service
// without making the process unready.
func (h *Handler) RegisterAdvisory(name string, fn CheckFunc) {
	h.add(check{name: name, fn: fn})
}

func (h *Handler) add(c check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, c)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// CheckResult is one dependency's outcome.
type CheckResult struct {
	Name     string `json:"name"`
	Up       bool   `json:"up"`
	Required bool   `json:"required"`
	Error    string `json:"error,omitempty"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := h.Readiness(r.Context())
	status := http.StatusOK
	if resp.Status == StatusNotReady {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

// Readiness runs every check concurrently, each bounded by its own timeout.
// Results are sorted by name.
func (h *Handler) Readiness(ctx context.Context) ReadinessResponse {
	h.mu.RLock()
	checks := append([]check(nil), h.checks...)
	h.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			res := CheckResult{Name: c.name, Up: true, Required: c.required}
			if err := c.fn(cctx); err != nil {
				res.Up = false
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	resp := ReadinessResponse{Status: StatusReady, Checks: results}
	for _, res := range results {
		switch {
		case res.Up:
		case res.Required:
			resp.Status = StatusNotReady
		case resp.Status == StatusReady:
			resp.Status = StatusDegraded
		}
	}
	return resp
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(now.Sub(h.startTime).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}
