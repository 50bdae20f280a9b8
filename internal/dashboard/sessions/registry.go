// Package sessions keeps one dashboard orchestrator per operator session
// of the BFF server.
package sessions

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/orchestrator"
	"creditboard/internal/dashboard/render"
	platformsync "creditboard/pkg/platform/sync"
)

// Factory builds the orchestrator for a new session. Frames rendered by
// the orchestrator must go to store.
type Factory func(id string, store *render.FrameStore) *orchestrator.Orchestrator

// Entry is one live operator session.
type Entry struct {
	ID        string
	Device    string
	CreatedAt time.Time
	Orch      *orchestrator.Orchestrator
	Frames    *render.FrameStore

	lastSeen atomic.Int64
	// work tracks intents still running in the background.
	work atomic.Int32
}

func (e *Entry) LastSeen() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}

func (e *Entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

// Info describes a session for listings.
type Info struct {
	ID       string    `json:"id"`
	Device   string    `json:"device"`
	Phase    string    `json:"phase"`
	Selected string    `json:"selected_customer_id,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// Registry is safe for concurrent use.
type Registry struct {
	entries *platformsync.ShardedMap[*Entry]
	factory Factory
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures the Registry.
type Option func(*Registry)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func New(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		entries: platformsync.NewShardedMap[*Entry](),
		factory: factory,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the session for id, creating one when id is blank or
// unknown. Unknown ids are never adopted; the new session gets a fresh id.
func (r *Registry) Resolve(id, device string) (e *Entry, created bool) {
	now := r.now()
	if id != "" {
		if existing, ok := r.entries.Get(id); ok {
			existing.touch(now)
			return existing, false
		}
	}

	newID := r.newID()
	e, created = r.entries.GetOrCreate(newID, func() *Entry {
		store := render.NewFrameStore()
		entry := &Entry{
			ID:        newID,
			Device:    device,
			CreatedAt: now,
			Frames:    store,
			Orch:      r.factory(newID, store),
		}
		return entry
	})
	e.touch(now)
	if created {
		r.metrics.SetLiveSessions(r.entries.Len())
		r.logger.Info("operator session created", "session_id", e.ID, "device", device)
	}
	return e, created
}

func (r *Registry) Get(id string) (*Entry, bool) {
	return r.entries.Get(id)
}

// Go runs an intent for e in the background on a context detached from
// the request. The session counts as busy until fn returns.
func (r *Registry) Go(ctx context.Context, e *Entry, fn func(ctx context.Context)) {
	e.work.Add(1)
	bg := context.WithoutCancel(ctx)
	go func() {
		defer e.work.Add(-1)
		fn(bg)
	}()
}

// Each calls fn for every live session.
func (r *Registry) Each(fn func(*Entry)) {
	r.entries.Range(func(_ string, e *Entry) bool {
		fn(e)
		return true
	})
}

// List returns all sessions, most recently seen first.
func (r *Registry) List() []Info {
	out := make([]Info, 0, r.entries.Len())
	r.Each(func(e *Entry) {
		st := e.Orch.State()
		out = append(out, Info{
			ID:       e.ID,
			Device:   e.Device,
			Phase:    st.Phase.String(),
			Selected: st.Selected.String(),
			LastSeen: e.LastSeen(),
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out
}

func (r *Registry) Len() int {
	return r.entries.Len()
}

// EvictIdle removes sessions unseen for longer than ttl. Sessions with
// intents still running are kept.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)
	removed := r.entries.DeleteIf(func(_ string, e *Entry) bool {
		return e.work.Load() == 0 && e.LastSeen().Before(cutoff)
	})
	if removed > 0 {
		r.metrics.RecordEvictions(removed)
		r.metrics.SetLiveSessions(r.entries.Len())
	}
	return removed
}
