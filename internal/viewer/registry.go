package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/pkg/metrics"
)

// ErrTooManySessions is returned by Create when the registry is full.
var ErrTooManySessions = errors.New("too many viewer sessions")

// RegistryOptions bounds the session registry.
type RegistryOptions struct {
	Map         MapOptions
	MaxSessions int
	IdleTTL     time.Duration
}

// Events queued per session for the publisher, and the deadline of one
// publish.
const (
	eventBuffer    = 32
	publishTimeout = 5 * time.Second
)

type session struct {
	ctrl     *Controller
	lastSeen time.Time
	stop     func()
}

func (s *session) close(ctx context.Context) {
	s.ctrl.Close(ctx)
	if s.stop != nil {
		s.stop()
	}
}

// Registry hosts one Controller per viewer session. Sessions expire after
// IdleTTL without use.
type Registry struct {
	source ports.FeatureSource
	blobs  ports.BlobStore
	events ports.EventPublisher
	opts   RegistryOptions
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewRegistry creates a registry. events may be nil.
func NewRegistry(source ports.FeatureSource, blobs ports.BlobStore, events ports.EventPublisher, opts RegistryOptions) *Registry {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	return &Registry{
		source:   source,
		blobs:    blobs,
		events:   events,
		opts:     opts,
		now:      time.Now,
		sessions: map[string]*session{},
	}
}

// Create starts a new session with a fresh map.
func (r *Registry) Create(ctx context.Context) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked(ctx)
	if len(r.sessions) >= r.opts.MaxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	bus := NewBus()
	s := &session{lastSeen: r.now()}
	if r.events != nil {
		// Publishing waits on the broker, so it stays off the request path.
		forward, stop := Async("publisher", eventBuffer, r.forward)
		bus.OnAny(forward)
		s.stop = stop
	}
	s.ctrl = NewController(id, NewMap(r.opts.Map), r.source, r.blobs, bus)
	r.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))

	slog.Debug("viewer session created", "session", id)
	return s.ctrl, nil
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || r.now().Sub(s.lastSeen) > r.opts.IdleTTL {
		return nil, domain.ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s.ctrl, nil
}

// Delete ends a session.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	s.close(ctx)
	return nil
}

// Len returns the number of sessions held, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes idle sessions.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expireLocked(ctx)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				slog.Info("expired viewer sessions", "count", n)
			}
		}
	}
}

func (r *Registry) expireLocked(ctx context.Context) int {
	now := r.now()
	expired := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.opts.IdleTTL {
			delete(r.sessions, id)
			s.close(ctx)
			expired++
		}
	}
	if expired > 0 {
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	return expired
}

func (r *Registry) forward(e domain.ViewerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.events.PublishViewerEvent(ctx, e); err != nil {
		slog.Warn("publish viewer event", "session", e.SessionID, "type", e.Type, "error", err)
	}
}
