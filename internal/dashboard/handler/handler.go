// Package handler exposes operator sessions over HTTP for the BFF server.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/sessions"
	dErrors "creditboard/pkg/domain-errors"
	"creditboard/pkg/platform/httputil"
	"creditboard/pkg/requestcontext"
)

// SessionCookie carries the operator session id.
const SessionCookie = "creditboard_session"

// maxWait caps how long GET /session holds a long poll open.
const maxWait = 25 * time.Second

// Handler serves the session endpoints.
type Handler struct {
	registry     *sessions.Registry
	logger       *slog.Logger
	secureCookie bool
}

// Option configures the Handler.
type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

func New(registry *sessions.Registry, opts ...Option) *Handler {
	h := &Handler{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the session routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/session", h.HandleGetSession)
	r.Post("/session/select", h.HandleSelect)
	r.Put("/session/filters", h.HandleChangeFilter)
	r.Post("/session/generate", h.HandleGenerate)
	r.Post("/session/customers/refresh", h.HandleRefreshCustomers)
	r.Get("/sessions", h.HandleListSessions)
}

// SelectRequest picks the customer whose dashboard is loaded.
type SelectRequest struct {
	CustomerID models.CustomerID `json:"customer_id"`
}

func (r *SelectRequest) Normalize() {
	r.CustomerID = models.CustomerID(strings.TrimSpace(r.CustomerID.String()))
}

func (r *SelectRequest) Validate() error {
	if r.CustomerID.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "customer_id is required")
	}
	return nil
}

// FilterRequest changes one dashboard filter.
type FilterRequest struct {
	Field models.FilterField `json:"field"`
	Value string             `json:"value"`
}

func (r *FilterRequest) Normalize() {
	r.Field = models.FilterField(strings.TrimSpace(string(r.Field)))
}

func (r *FilterRequest) Validate() error {
	if !r.Field.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "field must be one of viewer_type, subscription_tier, lender_id")
	}
	if _, err := models.NewDashboardQuery().With(r.Field, r.Value); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return nil
}

// AcceptedResponse acknowledges an intent. The outcome shows up in a
// later frame with a version above Version.
type AcceptedResponse struct {
	SessionID string `json:"session_id"`
	Version   uint64 `json:"version"`
}

// HandleGetSession returns the latest frame of the caller's session.
//
// With ?since=N it long-polls until a frame newer than N exists or the
// wait (?wait=, capped at 25s) runs out, then returns the latest frame.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	e := h.session(w, r)

	since, hasSince, err := parseSince(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if hasSince {
		wait, err := parseWait(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		h.waitForFrame(r.Context(), e, since, wait)
	}

	httputil.WriteJSON(w, http.StatusOK, currentFrame(e))
}

func (h *Handler) waitForFrame(ctx context.Context, e *sessions.Entry, since uint64, wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		changed := e.Frames.Changed()
		if f, ok := e.Frames.Latest(); ok && f.Version > since {
			return
		}
		select {
		case <-changed:
		case <-timer.C:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Bind[SelectRequest](w, r, h.logger)
	if !ok {
		return
	}
	e := h.session(w, r)

	h.registry.Go(ctx, e, func(ctx context.Context) {
		e.Orch.SelectCustomer(ctx, req.CustomerID)
	})
	h.accepted(w, e)
}

func (h *Handler) HandleChangeFilter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Bind[FilterRequest](w, r, h.logger)
	if !ok {
		return
	}
	e := h.session(w, r)

	h.registry.Go(ctx, e, func(ctx context.Context) {
		if err := e.Orch.ChangeFilter(ctx, req.Field, req.Value); err != nil {
			h.logger.WarnContext(ctx, "filter change rejected",
				"session_id", e.ID,
				"field", req.Field,
				"error", err,
			)
		}
	})
	h.accepted(w, e)
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	e := h.session(w, r)
	if e.Orch.State().Selected.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "select a customer before generating a dashboard"))
		return
	}

	h.registry.Go(r.Context(), e, func(ctx context.Context) {
		e.Orch.Generate(ctx)
	})
	h.accepted(w, e)
}

func (h *Handler) HandleRefreshCustomers(w http.ResponseWriter, r *http.Request) {
	e := h.session(w, r)
	h.registry.Go(r.Context(), e, e.Orch.RefreshCustomers)
	h.accepted(w, e)
}

// SessionsResponse lists live operator sessions.
type SessionsResponse struct {
	Sessions []sessions.Info `json:"sessions"`
	Total    int             `json:"total"`
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, _ *http.Request) {
	list := h.registry.List()
	httputil.WriteJSON(w, http.StatusOK, SessionsResponse{Sessions: list, Total: len(list)})
}

// session resolves the caller's session from the cookie. A new session
// gets its cookie set and starts loading the customer list.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *sessions.Entry {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	e, created := h.registry.Resolve(id, requestcontext.DeviceLabel(r.Context()))
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    e.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		h.registry.Go(r.Context(), e, e.Orch.RefreshCustomers)
	}
	return e
}

func (h *Handler) accepted(w http.ResponseWriter, e *sessions.Entry) {
	httputil.WriteJSON(w, http.StatusAccepted, AcceptedResponse{
		SessionID: e.ID,
		Version:   currentFrame(e).Version,
	})
}

func currentFrame(e *sessions.Entry) models.Frame {
	if f, ok := e.Frames.Latest(); ok {
		return f
	}
	return e.Orch.Frame()
}

func parseSince(r *http.Request) (uint64, bool, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, dErrors.New(dErrors.CodeBadRequest, "since must be a frame version")
	}
	return v, true, nil
}

func parseWait(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return maxWait, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "wait must be a duration such as 10s")
	}
	return min(d, maxWait), nil
}
