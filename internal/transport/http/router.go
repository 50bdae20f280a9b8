package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	sessionhandler "creditboard/internal/dashboard/handler"
	"creditboard/internal/platform/health"
	"creditboard/pkg/platform/middleware/device"
	"creditboard/pkg/platform/middleware/request"
)

const (
	// requestTimeout sits above the longest /session long poll.
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 10
)

// RouterConfig carries what NewRouter wires together.
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions *sessionhandler.Handler
	Health   *health.Handler
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer       prometheus.Gatherer
	RequestMetrics *request.Metrics
	// AllowedOrigins enables CORS for browser front-ends when non-empty.
	AllowedOrigins []string
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(device.Middleware)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Instrument(cfg.RequestMetrics))

	cfg.Health.Register(r)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(otelhttp.NewMiddleware("creditboard",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		))
		r.Use(request.Timeout(requestTimeout))
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.ContentTypeJSON)
		cfg.Sessions.Register(r)
	})

	var h http.Handler = handlers.CompressHandler(r)
	if len(cfg.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
			handlers.ExposedHeaders([]string{"X-Request-ID"}),
			handlers.AllowCredentials(),
		)(h)
	}
	return h
}
