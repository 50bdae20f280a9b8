// Package refresh reloads the customer list of every live operator session
// on a cron schedule.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"creditboard/internal/dashboard/sessions"
)

// SessionSource lists the sessions to refresh.
type SessionSource interface {
	Each(fn func(*sessions.Entry))
}

// Result summarizes one refresh run.
type Result struct {
	Sessions int
	Failed   int
}

// Service runs scheduled customer-list refreshes.
type Service struct {
	sessions    SessionSource
	schedule    string
	concurrency int
	logger      *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithConcurrency caps how many sessions refresh at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New validates schedule, a standard cron spec or descriptor such as
// "@every 5m".
func New(source SessionSource, schedule string, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("session source is required")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	s := &Service{
		sessions:    source,
		schedule:    schedule,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Start runs refreshes on the schedule until ctx is cancelled. A run still
// in progress is waited for before Start returns.
func (s *Service) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() {
		res := s.RunOnce(ctx)
		s.logger.InfoContext(ctx, "scheduled customer refresh finished",
			"sessions", res.Sessions,
			"failed", res.Failed,
		)
	}); err != nil {
		return fmt.Errorf("unable to schedule customer refresh: %w", err)
	}

	c.Start()
	s.logger.InfoContext(ctx, "customer refresh scheduler started", "schedule", s.schedule)
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// RunOnce refreshes every session once. Failures are counted; each one has
// already been logged by the session.
func (s *Service) RunOnce(ctx context.Context) Result {
	var failed, total atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	s.sessions.Each(func(e *sessions.Entry) {
		total.Add(1)
		g.Go(func() error {
			if err := e.Orch.SyncCustomers(gctx); err != nil {
				failed.Add(1)
			}
			return nil
		})
	})
	_ = g.Wait()

	return Result{Sessions: int(total.Load()), Failed: int(failed.Load())}
}
