package events

import (
	"sync"
	"time"
)

// Handler receives a single Event. Handlers run synchronously inside
// Emit; they must not mutate engine state or call back into the engine
// on the same goroutine, since Emit has not returned to its caller yet.
type Handler func(Event)

// Bus is a single-threaded, in-process typed publish/subscribe
// dispatcher. On/OnAny register handlers; Emit invokes every matching
// handler synchronously, in registration order, with typed subscribers
// before the wildcard subscribers.
//
// Bus is safe for concurrent registration, but the engine itself only
// ever calls Emit from one goroutine at a time, matching the engine's
// single-threaded scheduling model (spec.md §5).
type Bus struct {
	mu       sync.Mutex
	handlers map[Type][]Handler
	wildcard []Handler
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// On registers h to be invoked for every Event of the given type, after
// any previously registered handlers for that type.
func (b *Bus) On(eventType Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// OnAny registers h to be invoked for every Event, after the typed
// subscribers for that event's type have run.
func (b *Bus) OnAny(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, h)
}

// Emit dispatches an Event of the given type carrying payload to every
// matching subscriber, synchronously, in registration order: typed
// subscribers first, then wildcard subscribers.
func (b *Bus) Emit(eventType Type, payload any) {
	event := Event{Type: eventType, Payload: payload, Timestamp: time.Now()}

	b.mu.Lock()
	typed := append([]Handler(nil), b.handlers[eventType]...)
	wildcard := append([]Handler(nil), b.wildcard...)
	b.mu.Unlock()

	for _, h := range typed {
		h(event)
	}
	for _, h := range wildcard {
		h(event)
	}
}
