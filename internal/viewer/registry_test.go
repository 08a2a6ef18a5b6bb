package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/muralmap/internal/adapters/memory"
	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
)

type fixedSource string

func (s fixedSource) FetchFeatures(ctx context.Context) ([]byte, error) { return []byte(s), nil }

type capturePublisher struct {
	delay time.Duration

	mu        sync.Mutex
	events    []domain.ViewerEvent
	deadlines []bool
}

func (p *capturePublisher) PublishViewerEvent(ctx context.Context, e domain.ViewerEvent) error {
	time.Sleep(p.delay)
	_, hasDeadline := ctx.Deadline()
	p.mu.Lock()
	p.events = append(p.events, e)
	p.deadlines = append(p.deadlines, hasDeadline)
	p.mu.Unlock()
	return nil
}

// waitFor polls until n events were published or the timeout passes.
func (p *capturePublisher) waitFor(t *testing.T, n int, timeout time.Duration) []domain.ViewerEvent {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		p.mu.Lock()
		got := append([]domain.ViewerEvent(nil), p.events...)
		p.mu.Unlock()
		if len(got) >= n || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (p *capturePublisher) PublishDataRefreshed(ctx context.Context, r domain.DataRefresh) error {
	return nil
}

func newTestRegistry(limit int, pub *capturePublisher) (*Registry, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var events ports.EventPublisher
	if pub != nil {
		events = pub
	}
	r := NewRegistry(fixedSource(`{"features":[]}`), memory.NewBlobStore(), events, RegistryOptions{
		Map:         DefaultMapOptions(),
		MaxSessions: limit,
		IdleTTL:     time.Minute,
	})
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r, _ := newTestRegistry(10, nil)
	ctx := context.Background()

	ctrl, err := r.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := r.Get(ctrl.ID())
	if err != nil || got != ctrl {
		t.Fatalf("expected same controller, got %v, %v", got, err)
	}

	if err := r.Delete(ctx, ctrl.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.Get(ctrl.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := r.Delete(ctx, ctrl.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestRegistry_Cap(t *testing.T) {
	r, _ := newTestRegistry(2, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := r.Create(ctx); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := r.Create(ctx); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("expected ErrTooManySessions, got %v", err)
	}
}

func TestRegistry_IdleExpiry(t *testing.T) {
	r, now := newTestRegistry(1, nil)
	ctx := context.Background()

	ctrl, _ := r.Create(ctx)
	*now = now.Add(30 * time.Second)
	if _, err := r.Get(ctrl.ID()); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}

	*now = now.Add(2 * time.Minute)
	if _, err := r.Get(ctrl.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected expired session, got %v", err)
	}

	// The full registry frees the idle slot on the next create.
	if _, err := r.Create(ctx); err != nil {
		t.Errorf("expected expired slot to be reused, got %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 session, got %d", r.Len())
	}
}

func TestRegistry_Sweep(t *testing.T) {
	r, now := newTestRegistry(5, nil)
	ctx := context.Background()
	_, _ = r.Create(ctx)
	_, _ = r.Create(ctx)

	*now = now.Add(5 * time.Minute)
	if n := r.Sweep(ctx); n != 2 {
		t.Errorf("expected 2 expired, got %d", n)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistry_ForwardsEvents(t *testing.T) {
	pub := &capturePublisher{}
	r, _ := newTestRegistry(5, pub)

	ctrl, _ := r.Create(context.Background())
	if _, err := ctrl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	events := pub.waitFor(t, 2, time.Second)
	if len(events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(events))
	}
	for _, e := range events {
		if e.SessionID != ctrl.ID() {
			t.Errorf("expected session %s, got %s", ctrl.ID(), e.SessionID)
		}
	}
	if events[0].Type != domain.EventLoadRequested || events[1].Type != domain.EventLoadSucceeded {
		t.Errorf("expected events in emit order, got %s then %s", events[0].Type, events[1].Type)
	}
}

func TestRegistry_SlowPublisherDoesNotBlockLoad(t *testing.T) {
	pub := &capturePublisher{delay: 300 * time.Millisecond}
	r, _ := newTestRegistry(5, pub)
	ctrl, _ := r.Create(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := ctrl.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if took := time.Since(start); took > 100*time.Millisecond {
		t.Errorf("expected load to return before the publisher, took %v", took)
	}

	if events := pub.waitFor(t, 2, 2*time.Second); len(events) != 2 {
		t.Fatalf("expected both events published eventually, got %d", len(events))
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	for i, ok := range pub.deadlines {
		if !ok {
			t.Errorf("publish %d ran without a deadline", i)
		}
	}
}

func TestRegistry_DeleteFlushesQueuedEvents(t *testing.T) {
	pub := &capturePublisher{delay: 20 * time.Millisecond}
	r, _ := newTestRegistry(5, pub)
	ctx := context.Background()

	ctrl, _ := r.Create(ctx)
	if _, err := ctrl.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Delete(ctx, ctrl.ID()); err != nil {
		t.Fatal(err)
	}
	if events := pub.waitFor(t, 2, time.Second); len(events) != 2 {
		t.Errorf("expected queued events published after delete, got %d", len(events))
	}
}

func TestBus_OnAndUnsubscribe(t *testing.T) {
	bus := NewBus()
	var typed, all int
	off := bus.On(domain.EventExportReady, func(domain.ViewerEvent) { typed++ })
	bus.OnAny(func(domain.ViewerEvent) { all++ })

	bus.Emit(domain.ViewerEvent{Type: domain.EventExportReady})
	bus.Emit(domain.ViewerEvent{Type: domain.EventLoadRequested})
	off()
	bus.Emit(domain.ViewerEvent{Type: domain.EventExportReady})

	if typed != 1 {
		t.Errorf("expected typed handler once, got %d", typed)
	}
	if all != 3 {
		t.Errorf("expected catch-all handler 3 times, got %d", all)
	}
}

func TestAsync_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var handled int
	h, stop := Async("test", 1, func(domain.ViewerEvent) {
		<-release
		mu.Lock()
		handled++
		mu.Unlock()
	})

	start := time.Now()
	for i := 0; i < 5; i++ {
		h(domain.ViewerEvent{Type: domain.EventLoadRequested})
	}
	if took := time.Since(start); took > 50*time.Millisecond {
		t.Errorf("expected emit not to wait on a stuck handler, took %v", took)
	}

	close(release)
	stop()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// One event in the handler and one buffered; the rest were dropped.
	if handled < 1 || handled > 2 {
		t.Errorf("expected 1 or 2 handled events, got %d", handled)
	}
}
