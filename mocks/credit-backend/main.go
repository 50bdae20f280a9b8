// Command credit-backend serves seeded customers and deterministic credit
// dashboards for local development of the dashboard client.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"creditboard/internal/platform/logger"
)

const (
	defaultPort      = "8000"
	defaultLatencyMs = 300
)

func main() {
	_ = godotenv.Load()
	log := logger.New(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "text"))

	latency := defaultLatencyMs
	if v := os.Getenv("LATENCY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			latency = n
		} else {
			log.Warn("invalid LATENCY_MS, using default", "value", v, "default", defaultLatencyMs)
		}
	}

	addr := ":" + getEnv("PORT", defaultPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(time.Duration(latency)*time.Millisecond, log).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("mock credit backend starting", "addr", addr, "latency_ms", latency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
