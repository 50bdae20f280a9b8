// Package circuit provides a small circuit breaker for upstream calls.
package circuit

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls flow normally.
	StateClosed State = iota
	// StateOpen means calls are rejected until the cooldown elapses.
	StateOpen
	// StateProbing means the cooldown elapsed and calls are let through to
	// test whether the upstream recovered.
	StateProbing
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateProbing:
		return "probing"
	default:
		return "closed"
	}
}

// StateChange reports a transition caused by a Record call.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker opens after FailureThreshold consecutive failures and rejects
// calls for Cooldown. Afterwards calls probe the upstream: SuccessThreshold
// consecutive successes close it, any failure re-opens it.
type Breaker struct {
	mu               sync.Mutex
	state            State
	name             string
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	now              func() time.Time
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures that open the circuit.
// Default is 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive probe successes that close the
// circuit. Default is 1.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithCooldown sets how long an open circuit rejects calls. Default is 30s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a closed circuit breaker.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		successThreshold: 1,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

// Allow reports whether a call may proceed. An open circuit whose cooldown
// has elapsed moves to probing and allows the call.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = StateProbing
		b.successCount = 0
	}
	return true
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// RecordFailure records a failed call.
func (b *Breaker) RecordFailure() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successCount = 0
	switch b.state {
	case StateOpen:
		return StateChange{}
	case StateProbing:
		b.trip()
		return StateChange{Opened: true}
	}

	b.failureCount++
	if b.failureCount >= b.failureThreshold {
		b.trip()
		return StateChange{Opened: true}
	}
	return StateChange{}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failureCount = 0
}

// RecordSuccess records a successful call.
func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateProbing {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.successCount = 0
			return StateChange{Closed: true}
		}
		return StateChange{}
	}

	b.failureCount = 0
	return StateChange{}
}

// Reset closes the circuit and clears all counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
}
