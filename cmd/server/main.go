package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"creditboard/internal/dashboard/adapters/backend"
	sessionhandler "creditboard/internal/dashboard/handler"
	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/orchestrator"
	"creditboard/internal/dashboard/render"
	"creditboard/internal/dashboard/sessions"
	"creditboard/internal/dashboard/tracer"
	"creditboard/internal/dashboard/workers/eviction"
	"creditboard/internal/dashboard/workers/refresh"
	"creditboard/internal/platform/config"
	"creditboard/internal/platform/health"
	"creditboard/internal/platform/logger"
	httptransport "creditboard/internal/transport/http"
	"creditboard/pkg/platform/circuit"
	"creditboard/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Dashboard logic lives in internal/dashboard.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(2)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing creditboard",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"backend", cfg.Backend.BaseURL,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dashMetrics := metrics.New(reg)

	shutdownTracing, err := tracer.Setup(ctx, tracer.ExportConfig{
		ServiceName: "creditboard",
		Environment: cfg.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("flushing spans failed", "error", err)
		}
	}()
	tr := tracer.NewOTel()

	breaker := circuit.New("credit-backend",
		circuit.WithFailureThreshold(cfg.Backend.FailureThreshold),
		circuit.WithCooldown(cfg.Backend.BreakerCooldown),
	)
	client := backend.New(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithBreaker(breaker),
		backend.WithTracer(tr),
		backend.WithLogger(log),
	)

	query := cfg.DefaultQuery()
	registry := sessions.New(func(id string, store *render.FrameStore) *orchestrator.Orchestrator {
		return orchestrator.New(client, store,
			orchestrator.WithLogger(log),
			orchestrator.WithMetrics(dashMetrics),
			orchestrator.WithTracer(tr),
			orchestrator.WithQuery(query),
			orchestrator.WithSessionID(id),
		)
	}, sessions.WithMetrics(dashMetrics), sessions.WithLogger(log))

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterAdvisory("credit_backend", func(context.Context) error {
		if breaker.State() == circuit.StateOpen {
			return errors.New("circuit open")
		}
		return nil
	})

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Sessions:       sessionhandler.New(registry, sessionhandler.WithLogger(log), sessionhandler.WithSecureCookie(cfg.SecureCookie)),
		Health:         healthHandler,
		Gatherer:       reg,
		RequestMetrics: request.NewMetrics(reg),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	evictor, err := eviction.New(registry, cfg.Sessions.IdleTTL,
		eviction.WithInterval(cfg.Sessions.EvictionInterval),
		eviction.WithLogger(log),
	)
	if err != nil {
		return err
	}
	var refresher *refresh.Service
	if cfg.Sessions.RefreshSchedule != "" {
		refresher, err = refresh.New(registry, cfg.Sessions.RefreshSchedule, refresh.WithLogger(log))
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return ignoreCanceled(evictor.Start(gctx))
	})
	if refresher != nil {
		g.Go(func() error {
			return ignoreCanceled(refresher.Start(gctx))
		})
	} else {
		log.Info("scheduled customer refresh disabled")
	}

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
