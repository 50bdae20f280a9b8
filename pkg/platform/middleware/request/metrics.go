package request

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request kinds. Long polls hold the connection until a new frame appears,
// so their duration says nothing about server latency.
const (
	KindCall     = "call"
	KindLongPoll = "long_poll"
)

type Metrics struct {
	Duration *prometheus.HistogramVec
	InFlight *prometheus.GaugeVec
}

// NewMetrics registers with reg, or the default registerer when nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creditboard_http_request_duration_seconds",
			Help:    "Duration of BFF requests by route, status class and kind",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 25},
		}, []string{"method", "route", "status", "kind"}),
		InFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditboard_http_requests_in_flight",
			Help: "Requests currently being served, by kind",
		}, []string{"kind"}),
	}
}

// Instrument records every request under its chi route pattern, so path
// parameters do not explode label cardinality. A nil m records nothing.
func Instrument(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			kind := KindCall
			if r.Method == http.MethodGet && r.URL.Query().Has("wait") {
				kind = KindLongPoll
			}
			inFlight := m.InFlight.WithLabelValues(kind)
			inFlight.Inc()
			defer inFlight.Dec()

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			m.Duration.WithLabelValues(r.Method, route(r), statusClass(sw.status), kind).
				Observe(time.Since(start).Seconds())
		})
	}
}

func route(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
