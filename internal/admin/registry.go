package admin

import (
	"context"
	"sync"
	"time"

	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/logging"
)

// DefaultIdle is how long an unused gate is kept.
const DefaultIdle = 30 * time.Minute

type entry struct {
	gate     *Gate
	lastUsed time.Time
}

// Registry holds one gate per browser session id.
type Registry struct {
	backend Backend
	store   *auth.Store
	idle    time.Duration
	now     func() time.Time

	mu    sync.Mutex
	gates map[string]*entry
}

// NewRegistry returns an empty registry. idle <= 0 selects DefaultIdle; now
// may be nil.
func NewRegistry(backend Backend, store *auth.Store, idle time.Duration, now func() time.Time) *Registry {
	if idle <= 0 {
		idle = DefaultIdle
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{
		backend: backend,
		store:   store,
		idle:    idle,
		now:     now,
		gates:   make(map[string]*entry),
	}
}

// Get returns the gate for sid, starting one if needed.
func (r *Registry) Get(ctx context.Context, sid string) *Gate {
	g, _ := r.open(ctx, sid)
	return g
}

// Enter returns the gate for sid with fresh diagnostics. Entering the admin
// area goes through here so a backend that came back is seen.
func (r *Registry) Enter(ctx context.Context, sid string) *Gate {
	g, started := r.open(ctx, sid)
	if !started {
		g.Refresh(ctx)
	}
	return g
}

// open reports whether it started a new gate.
func (r *Registry) open(ctx context.Context, sid string) (*Gate, bool) {
	r.mu.Lock()
	if e, ok := r.gates[sid]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.gate, false
	}
	g := NewGate(r.backend, r.store.Scope(sid))
	r.gates[sid] = &entry{gate: g, lastUsed: r.now()}
	r.mu.Unlock()

	g.Start(ctx)
	return g, true
}

// Forget closes and drops the gate for sid.
func (r *Registry) Forget(sid string) {
	r.mu.Lock()
	e, ok := r.gates[sid]
	delete(r.gates, sid)
	r.mu.Unlock()
	if ok {
		e.gate.Close()
	}
}

// Sweep closes gates idle for longer than the idle timeout and returns how
// many were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var stale []*Gate
	for sid, e := range r.gates {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e.gate)
			delete(r.gates, sid)
		}
	}
	r.mu.Unlock()

	for _, g := range stale {
		g.Close()
	}
	return len(stale)
}

// Len is the number of live gates.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	log := logging.Component("admin")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.WithField("count", n).Debug("dropped idle admin gates")
			}
		}
	}
}
