package viewer

import (
	"log/slog"
	"sync"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/pkg/metrics"
)

// Handler receives viewer events. Handlers run synchronously on the
// emitting goroutine and must not block; wrap anything that does I/O with
// Async.
type Handler func(domain.ViewerEvent)

// Bus dispatches viewer events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[domain.ViewerEventType]map[int]Handler
	all      map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: map[domain.ViewerEventType]map[int]Handler{},
		all:      map[int]Handler{},
	}
}

// On registers h for events of type t. The returned func unregisters it.
func (b *Bus) On(t domain.ViewerEventType, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.handlers[t] == nil {
		b.handlers[t] = map[int]Handler{}
	}
	b.handlers[t][id] = h
	return func() {
		b.mu.Lock()
		delete(b.handlers[t], id)
		b.mu.Unlock()
	}
}

// OnAny registers h for every event.
func (b *Bus) OnAny(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.all[id] = h
	return func() {
		b.mu.Lock()
		delete(b.all, id)
		b.mu.Unlock()
	}
}

// Emit delivers e to every matching handler.
func (b *Bus) Emit(e domain.ViewerEvent) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[e.Type])+len(b.all))
	for _, h := range b.handlers[e.Type] {
		hs = append(hs, h)
	}
	for _, h := range b.all {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}

// Async runs h on its own goroutine behind a buffer of size n. Emit never
// waits on it: events that arrive while the buffer is full are dropped and
// counted under name. stop ends the goroutine once the events already
// buffered have been handled.
func Async(name string, n int, h Handler) (wrapped Handler, stop func()) {
	if n <= 0 {
		n = 1
	}
	ch := make(chan domain.ViewerEvent, n)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case e := <-ch:
				h(e)
			case <-done:
				for {
					select {
					case e := <-ch:
						h(e)
					default:
						return
					}
				}
			}
		}
	}()

	var once sync.Once
	wrapped = func(e domain.ViewerEvent) {
		select {
		case <-done:
		case ch <- e:
		default:
			metrics.EventsDropped.WithLabelValues(name).Inc()
			slog.Warn("viewer event dropped", "consumer", name, "session", e.SessionID, "type", e.Type)
		}
	}
	return wrapped, func() { once.Do(func() { close(done) }) }
}
