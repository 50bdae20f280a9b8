package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"creditboard/pkg/platform/middleware/request"
)

var (
	viewerTypes       = map[string]bool{"silky_internal": true, "bank_partner": true, "merchant": true}
	subscriptionTiers = map[string]bool{"free": true, "standard": true, "pro": true, "enterprise": true}
)

// snapshot is the latest credit result stored for a customer after a
// dashboard has been generated.
type snapshot struct {
	Score      int     `json:"credit_score"`
	Band       string  `json:"credit_band"`
	Limit      float64 `json:"recommended_credit_limit_amount"`
	Currency   string  `json:"recommended_credit_limit_currency"`
	Tenor      int     `json:"max_safe_tenor_months"`
	SnapshotAt string  `json:"snapshot_at"`
}

type server struct {
	latency time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	customers []customer
	snapshots map[int]snapshot
}

func newServer(latency time.Duration, logger *slog.Logger) *server {
	return &server{
		latency:   latency,
		logger:    logger,
		now:       time.Now,
		customers: seedCustomers(),
		snapshots: make(map[int]snapshot),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(s.logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(s.logger))

	r.Get("/health", s.handleHealth)
	r.Get("/api/customers", s.handleCustomers)
	r.Get("/api/credit-dashboard/{customer_id}", s.handleDashboard)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "credit-backend",
	})
}

func (s *server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if !s.sleep(r.Context(), 1) {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]any, 0, len(s.customers))
	for _, c := range s.customers {
		entry := map[string]any{
			"id":                c.ID,
			"legal_name":        c.LegalName,
			"trade_name":        nullIfEmpty(c.TradeName),
			"industry":          nullIfEmpty(c.Industry),
			"city":              nullIfEmpty(c.City),
			"subscription_plan": nullIfEmpty(c.Plan),
			"latest_credit":     nil,
		}
		if snap, ok := s.snapshots[c.ID]; ok {
			entry["latest_credit"] = snap
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "customer_id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "customer_id must be an integer")
		return
	}
	q := r.URL.Query()
	viewer := q.Get("viewer_type")
	if viewer == "" {
		viewer = "silky_internal"
	}
	if !viewerTypes[viewer] {
		writeDetail(w, http.StatusUnprocessableEntity, "unsupported viewer_type")
		return
	}
	tier := q.Get("subscription_tier")
	if tier != "" && !subscriptionTiers[tier] {
		writeDetail(w, http.StatusUnprocessableEntity, "unsupported subscription_tier")
		return
	}

	periods := 2
	if id == idSlow {
		periods = 10
	}
	if !s.sleep(r.Context(), periods) {
		return
	}

	c, ok := s.customer(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Customer not found")
		return
	}
	switch id {
	case idModelFailure:
		writeDetail(w, http.StatusBadGateway, "Model output failed schema validation")
		return
	case idServerError:
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := s.now()
	doc := dashboard(c, viewer, tier, q.Get("lender_id"), now)
	s.recordSnapshot(c.ID, newProfile(c, viewer), now)

	s.logger.InfoContext(r.Context(), "dashboard generated",
		"customer_id", id,
		"viewer_type", viewer,
	)
	writeJSON(w, http.StatusOK, doc)
}

func (s *server) customer(id int) (customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return customer{}, false
}

// recordSnapshot makes the customer list reflect the latest generation.
func (s *server) recordSnapshot(id int, p profile, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[id] = snapshot{
		Score:      p.score,
		Band:       p.band,
		Limit:      p.limit,
		Currency:   "SAR",
		Tenor:      p.tenor,
		SnapshotAt: now.UTC().Format(time.RFC3339),
	}
}

// sleep simulates backend latency; it reports false when the client went away.
func (s *server) sleep(ctx context.Context, periods int) bool {
	if s.latency <= 0 {
		return true
	}
	t := time.NewTimer(time.Duration(periods) * s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
