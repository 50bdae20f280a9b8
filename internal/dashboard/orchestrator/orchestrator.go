// Package orchestrator turns operator intents into session transitions,
// backend fetches and rendered frames.
//
// Every intent follows the same order: mutate the session, render the
// loading frame, fetch, build the view model, apply the result if its token
// is still current, render again. Load failures are logged and surfaced in
// the status line; they are never returned to the caller.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/ports"
	"creditboard/internal/dashboard/session"
	"creditboard/internal/dashboard/tracer"
	"creditboard/internal/dashboard/viewmodel"
	dErrors "creditboard/pkg/domain-errors"
)

// Status line texts.
const (
	StatusLoadingCustomers    = "Loading customers…"
	StatusCustomersLoaded     = "Loaded %d customers"
	StatusCustomersFailed     = "Unable to load customers"
	StatusDashboardReady      = "Dashboard ready for customer %s"
	StatusDashboardFailed     = "Dashboard generation failed"
	StatusGeneratingDashboard = "Generating dashboard for customer %s…"
)

// Orchestrator owns one dashboard session. It is safe for concurrent use;
// overlapping loads are resolved by the session's request tokens.
type Orchestrator struct {
	source    ports.DataSource
	sink      ports.RenderSink
	session   *session.Session
	sessionID string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	query     models.DashboardQuery
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithQuery sets the initial filters, e.g. a configured default viewer.
func WithQuery(q models.DashboardQuery) Option {
	return func(o *Orchestrator) {
		o.query = q
	}
}

// WithSessionID tags log lines with the owning operator session.
func WithSessionID(id string) Option {
	return func(o *Orchestrator) {
		o.sessionID = id
	}
}

// New creates an orchestrator with an idle session. sink may be nil when
// frames are only read through Frame.
func New(source ports.DataSource, sink ports.RenderSink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source: source,
		sink:   sink,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
		query:  models.NewDashboardQuery(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.sessionID != "" {
		o.logger = o.logger.With("session_id", o.sessionID)
	}
	o.session = session.New(o.query)
	return o
}

// SelectCustomer makes id the current selection and loads its dashboard.
func (o *Orchestrator) SelectCustomer(ctx context.Context, id models.CustomerID) {
	tok, query, ok := o.session.Select(id)
	if !ok {
		return
	}
	o.start(ctx, tok, query)
}

// ChangeFilter updates one filter and, when a customer is selected, reloads
// its dashboard with the new query. Invalid filter values are returned as
// validation errors and change nothing.
func (o *Orchestrator) ChangeFilter(ctx context.Context, field models.FilterField, value string) error {
	tok, query, started, err := o.session.SetFilter(field, value)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}
	if !started {
		o.render(ctx)
		return nil
	}
	o.start(ctx, tok, query)
	return nil
}

// Generate reloads the dashboard for the current selection. It reports
// false without doing anything when no customer is selected.
func (o *Orchestrator) Generate(ctx context.Context) bool {
	tok, query, ok := o.session.Begin()
	if !ok {
		return false
	}
	o.start(ctx, tok, query)
	return true
}

// RefreshCustomers reloads the customer list and reports progress in the
// status line. It runs independently of any dashboard load.
func (o *Orchestrator) RefreshCustomers(ctx context.Context) {
	o.session.SetStatus(StatusLoadingCustomers, session.ToneNeutral)
	o.render(ctx)

	n, err := o.syncCustomers(ctx)
	if err != nil {
		o.session.SetStatus(StatusCustomersFailed, session.ToneWarn)
	} else {
		o.session.SetStatus(fmt.Sprintf(StatusCustomersLoaded, n), session.ToneGood)
	}
	o.render(ctx)
}

// SyncCustomers reloads the customer list without touching the status
// line. Scheduled refreshes use it; the classified error is returned for
// the caller's bookkeeping and has already been logged.
func (o *Orchestrator) SyncCustomers(ctx context.Context) error {
	_, err := o.syncCustomers(ctx)
	o.render(ctx)
	return err
}

func (o *Orchestrator) syncCustomers(ctx context.Context) (n int, err error) {
	ctx, span := o.tracer.Start(ctx, tracer.SpanCustomersRefresh)
	defer func() { span.End(err) }()

	list, err := o.source.ListCustomers(ctx)
	if err != nil {
		err = dErrors.Classify(err, dErrors.CodeCustomerListLoadFailed, StatusCustomersFailed)
		o.logger.ErrorContext(ctx, "customer list load failed", "error", err)
		o.metrics.RecordCustomerRefresh(metrics.OutcomeFailure)
		return 0, err
	}

	dups := o.session.ReplaceCustomers(list)
	if len(dups) > 0 {
		o.logger.WarnContext(ctx, "dropped repeated customer ids",
			"customer_ids", dups,
		)
		o.metrics.RecordDuplicateCustomers(len(dups))
	}
	n = len(list) - len(dups)
	span.SetAttributes(tracer.Int64(tracer.AttrCustomerCount, int64(n)))
	o.metrics.RecordCustomerRefresh(metrics.OutcomeSuccess)
	return n, nil
}

func (o *Orchestrator) start(ctx context.Context, tok session.Token, query models.DashboardQuery) {
	o.session.Announce(tok, session.Status{
		Text: fmt.Sprintf(StatusGeneratingDashboard, tok.CustomerID),
		Tone: session.ToneNeutral,
	})
	o.metrics.RecordPhase(session.PhaseLoading.String())
	o.render(ctx)
	o.load(ctx, tok, query)
}

// load fetches and applies one dashboard request. A completion whose token
// is no longer current is dropped without touching the session.
func (o *Orchestrator) load(ctx context.Context, tok session.Token, query models.DashboardQuery) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, tracer.SpanDashboardLoad,
		tracer.String(tracer.AttrCustomerID, tok.CustomerID.String()),
		tracer.String(tracer.AttrViewerType, query.ViewerType.String()),
		tracer.Int64(tracer.AttrRequestSeq, int64(tok.Seq)),
	)

	payload, err := o.source.FetchDashboard(ctx, tok.CustomerID, query)
	if err != nil {
		err = dErrors.Classify(err, dErrors.CodeDashboardLoadFailed, StatusDashboardFailed)
		if !o.session.Fail(tok, session.Status{Text: StatusDashboardFailed, Tone: session.ToneWarn}) {
			o.discard(ctx, span, tok, start)
			span.End(nil)
			return
		}
		o.logger.ErrorContext(ctx, "dashboard load failed",
			"customer_id", tok.CustomerID,
			"viewer_type", query.ViewerType,
			"error", err,
		)
		o.metrics.ObserveDashboardFetch(metrics.OutcomeFailure, time.Since(start))
		o.metrics.RecordPhase(session.PhaseError.String())
		o.render(ctx)
		span.End(err)
		return
	}

	snap := viewmodel.Snapshot(tok.CustomerID, payload)
	status := session.Status{
		Text: fmt.Sprintf(StatusDashboardReady, tok.CustomerID),
		Tone: session.ToneGood,
	}
	if !o.session.Complete(tok, snap, status) {
		o.discard(ctx, span, tok, start)
		span.End(nil)
		return
	}
	o.logger.InfoContext(ctx, "dashboard ready",
		"customer_id", tok.CustomerID,
		"viewer_type", query.ViewerType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	o.metrics.ObserveDashboardFetch(metrics.OutcomeSuccess, time.Since(start))
	o.metrics.RecordPhase(session.PhaseReady.String())
	o.render(ctx)
	span.End(nil)

	// Keeps the cards' credit snapshots in step with the dashboard just
	// generated. Failures here are logged only.
	if _, err := o.syncCustomers(ctx); err == nil {
		o.render(ctx)
	}
}

func (o *Orchestrator) discard(ctx context.Context, span tracer.Span, tok session.Token, start time.Time) {
	o.logger.InfoContext(ctx, "discarded stale dashboard response",
		"customer_id", tok.CustomerID,
		"request_seq", tok.Seq,
	)
	span.SetAttributes(tracer.Bool(tracer.AttrStale, true))
	span.AddEvent(tracer.EventStaleDiscarded)
	o.metrics.ObserveDashboardFetch(metrics.OutcomeDiscarded, time.Since(start))
}

// State returns a copy of the session.
func (o *Orchestrator) State() session.State {
	return o.session.Snapshot()
}

// Frame builds the current render frame.
func (o *Orchestrator) Frame() models.Frame {
	return BuildFrame(o.session.Snapshot())
}

func (o *Orchestrator) render(ctx context.Context) {
	if o.sink == nil {
		return
	}
	o.sink.Render(ctx, o.Frame())
}

// BuildFrame derives the render frame for a session state. The dashboard
// and its charts are present only for the selected customer's snapshot.
func BuildFrame(st session.State) models.Frame {
	visible := st.Visible()
	f := models.Frame{
		Version:            st.Version,
		Status:             st.Status.Text,
		StatusTone:         string(st.Status.Tone),
		Phase:              st.Phase.String(),
		SelectedCustomerID: st.Selected,
		SelectedTitle:      selectedTitle(st),
		Customers:          viewmodel.CustomerCards(st.Customers, st.Selected),
		Query:              st.Query,
		Dashboard:          visible,
		ShowPlaceholder:    visible == nil,
		ShowLoading:        st.Phase == session.PhaseLoading,
		ShowError:          st.Phase == session.PhaseError,
		CanGenerate:        !st.Selected.IsZero() && st.Phase != session.PhaseLoading,
	}
	if visible != nil {
		f.RevenueChart = visible.Financials.RevenueSeries
		f.CashflowChart = visible.Cashflow.Series
	}
	return f
}

func selectedTitle(st session.State) string {
	for _, c := range st.Customers {
		if c.ID == st.Selected {
			return viewmodel.CustomerTitle(c)
		}
	}
	return viewmodel.CustomerTitle(models.CustomerSummary{ID: st.Selected})
}
