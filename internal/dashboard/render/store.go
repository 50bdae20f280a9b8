// Package render holds the render sinks: a frame store for the BFF API and
// a text renderer for the terminal client.
package render

import (
	"context"
	"sync"

	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/ports"
)

var _ ports.RenderSink = (*FrameStore)(nil)

// FrameStore keeps the newest frame it has been given. Frames rendered out
// of order by concurrent loads are dropped by version.
type FrameStore struct {
	mu      sync.RWMutex
	frame   models.Frame
	hasAny  bool
	updates chan struct{}
}

func NewFrameStore() *FrameStore {
	return &FrameStore{updates: make(chan struct{})}
}

func (s *FrameStore) Render(_ context.Context, f models.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasAny && f.Version < s.frame.Version {
		return
	}
	s.frame = f
	s.hasAny = true
	close(s.updates)
	s.updates = make(chan struct{})
}

// Latest returns the newest frame and whether any frame was rendered yet.
func (s *FrameStore) Latest() (models.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.hasAny
}

// Changed returns a channel closed on the next accepted frame.
func (s *FrameStore) Changed() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates
}
