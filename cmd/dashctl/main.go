// Command dashctl is a line-oriented terminal client for the credit
// dashboard. It talks to the credit backend directly and redraws the
// whole screen after every change.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"creditboard/internal/dashboard/adapters/backend"
	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/orchestrator"
	"creditboard/internal/dashboard/render"
	"creditboard/internal/platform/config"
	"creditboard/internal/platform/logger"
	"creditboard/pkg/platform/circuit"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(2)
	}
	// Logs go to stderr so they do not interleave with the screen.
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := &lockedWriter{w: os.Stdout}
	m := metrics.New(prometheus.NewRegistry())
	terminal := render.NewTerminal(out, render.WithMetrics(m))
	defer terminal.Close()

	client := backend.New(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithBreaker(circuit.New("credit-backend",
			circuit.WithFailureThreshold(cfg.Backend.FailureThreshold),
			circuit.WithCooldown(cfg.Backend.BreakerCooldown),
		)),
		backend.WithLogger(log),
	)
	orch := orchestrator.New(client, terminal,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(m),
		orchestrator.WithQuery(cfg.DefaultQuery()),
	)

	fmt.Fprintf(out, "dashctl: backend %s, type help for commands\n", cfg.Backend.BaseURL)
	sh := &shell{orch: orch, redraw: terminal.Render, out: out}
	if err := sh.run(ctx, os.Stdin); err != nil {
		log.Error("reading commands failed", "error", err)
		os.Exit(1)
	}
}
