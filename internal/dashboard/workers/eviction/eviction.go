// Package eviction drops operator sessions that have gone idle.
package eviction

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionStore exposes idle-session eviction.
type SessionStore interface {
	EvictIdle(ttl time.Duration) int
}

// Service periodically evicts sessions unseen for longer than the TTL.
type Service struct {
	store    SessionStore
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
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

func New(store SessionStore, ttl time.Duration, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("idle ttl must be positive")
	}
	s := &Service{
		store:    store,
		ttl:      ttl,
		interval: time.Minute,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Start runs eviction periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep and returns how many sessions it removed.
func (s *Service) RunOnce(ctx context.Context) int {
	n := s.store.EvictIdle(s.ttl)
	if n > 0 {
		s.logger.InfoContext(ctx, "evicted idle operator sessions", "count", n, "idle_ttl", s.ttl)
	}
	return n
}
