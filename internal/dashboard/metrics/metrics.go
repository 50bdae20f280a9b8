// Package metrics provides Prometheus metrics for dashboard sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDiscarded = "discarded"
)

// Metrics holds the dashboard collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	DashboardFetchesTotal   *prometheus.CounterVec   // by outcome
	DashboardFetchDuration  *prometheus.HistogramVec // by outcome
	StaleResponsesTotal     prometheus.Counter
	CustomerRefreshesTotal  *prometheus.CounterVec // by outcome
	PhaseTransitionsTotal   *prometheus.CounterVec // by target phase
	LiveSessions            prometheus.Gauge
	LiveChartResources      prometheus.Gauge
	SessionsEvictedTotal    prometheus.Counter
	DuplicateCustomersTotal prometheus.Counter
}

// New registers all collectors with reg, or with the default registerer
// when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		DashboardFetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "creditboard_dashboard_fetches_total",
			Help: "Dashboard fetches by outcome",
		}, []string{"outcome"}),

		DashboardFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "creditboard_dashboard_fetch_duration_seconds",
			Help: "Dashboard fetch latency; generation runs a model and is slow",
			// Generation routinely takes seconds.
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"outcome"}),

		StaleResponsesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "creditboard_stale_responses_discarded_total",
			Help: "Dashboard responses dropped because a newer request superseded them",
		}),

		CustomerRefreshesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "creditboard_customer_refreshes_total",
			Help: "Customer list loads by outcome",
		}, []string{"outcome"}),

		PhaseTransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "creditboard_phase_transitions_total",
			Help: "Session phase transitions by target phase",
		}, []string{"phase"}),

		LiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "creditboard_live_sessions",
			Help: "Operator sessions currently held by the server",
		}),

		LiveChartResources: f.NewGauge(prometheus.GaugeOpts{
			Name: "creditboard_live_chart_resources",
			Help: "Chart resources currently held by render sinks",
		}),

		SessionsEvictedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "creditboard_sessions_evicted_total",
			Help: "Idle operator sessions evicted",
		}),

		DuplicateCustomersTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "creditboard_duplicate_customers_total",
			Help: "Customer list entries dropped for repeating an id",
		}),
	}
}

func (m *Metrics) ObserveDashboardFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.DashboardFetchesTotal.WithLabelValues(outcome).Inc()
	m.DashboardFetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == OutcomeDiscarded {
		m.StaleResponsesTotal.Inc()
	}
}

func (m *Metrics) RecordCustomerRefresh(outcome string) {
	if m == nil {
		return
	}
	m.CustomerRefreshesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPhase(phase string) {
	if m == nil {
		return
	}
	m.PhaseTransitionsTotal.WithLabelValues(phase).Inc()
}

func (m *Metrics) RecordDuplicateCustomers(n int) {
	if m == nil || n == 0 {
		return
	}
	m.DuplicateCustomersTotal.Add(float64(n))
}

func (m *Metrics) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.LiveSessions.Set(float64(n))
}

func (m *Metrics) RecordEvictions(n int) {
	if m == nil || n == 0 {
		return
	}
	m.SessionsEvictedTotal.Add(float64(n))
}

// ChartAcquired and ChartReleased track chart resources held by sinks.
func (m *Metrics) ChartAcquired() {
	if m == nil {
		return
	}
	m.LiveChartResources.Inc()
}

func (m *Metrics) ChartReleased() {
	if m == nil {
		return
	}
	m.LiveChartResources.Dec()
}
