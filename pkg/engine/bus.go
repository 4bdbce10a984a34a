package engine

import (
	"log/slog"
	"sync"

	"github.com/localdex/engine/pkg/core"
)

// busSubscriberCap bounds how many events a slow subscriber can fall behind
// by before new events to it are dropped, matching the watcher's
// drop-and-log discipline rather than letting one slow UI listener block
// every other command.
const busSubscriberCap = 256

// EventBus is a typed fire-and-forget pub/sub for core.Event, generalizing
// a single-listener slog event pattern into a multi-subscriber channel
// broadcast so more than one UI surface (or a test) can observe the same
// stream of progress and file-change events.
type EventBus struct {
	mu   sync.Mutex
	subs map[int]chan core.Event
	next int
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan core.Event)}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. Callers must keep draining the channel until they
// unsubscribe.
func (b *EventBus) Subscribe() (<-chan core.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan core.Event, busSubscriberCap)
	b.subs[id] = ch

	return ch, func() { b.unsubscribe(id) }
}

func (b *EventBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers ev to every current subscriber, non-blocking: a
// subscriber whose buffer is full has the event dropped and a warning
// logged rather than stalling the publisher.
func (b *EventBus) Publish(ev core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("engine: event subscriber full, dropping event", "type", ev.Type)
		}
	}
}

// Close unsubscribes and closes every listener's channel, used on Engine
// shutdown.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
