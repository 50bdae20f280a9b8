package eviction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu    sync.Mutex
	ttls  []time.Duration
	evict int
}

func (f *fakeStore) EvictIdle(ttl time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls = append(f.ttls, ttl)
	return f.evict
}

func (f *fakeStore) sweeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ttls)
}

func TestNew(t *testing.T) {
	_, err := New(nil, time.Minute)
	assert.Error(t, err)

	_, err = New(&fakeStore{}, 0)
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	store := &fakeStore{evict: 2}
	svc, err := New(store, 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.RunOnce(context.Background()))
	assert.Equal(t, []time.Duration{30 * time.Minute}, store.ttls)
}

func TestStart(t *testing.T) {
	store := &fakeStore{}
	svc, err := New(store, time.Minute, WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	assert.Eventually(t, func() bool { return store.sweeps() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
