// Package eventbus provides an in-process, typed document event bus.
// The corpus ingest path publishes classified events; the notification
// worker subscribes. Publishing never blocks the write path: a subscriber
// whose buffer is full misses the event and must catch up from storage.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Bus fans document events out to subscribers.
type Bus struct {
	log *slog.Logger

	mu     sync.RWMutex
	subs   map[int]chan *domain.DocumentEvent
	nextID int
	closed bool
}

// New creates a new event bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		log:  logger.With("component", "eventbus"),
		subs: make(map[int]chan *domain.DocumentEvent),
	}
}

// Subscribe registers a subscriber with the given buffer size and returns
// its channel plus an unsubscribe function. The channel is closed on
// unsubscribe or bus close.
func (b *Bus) Subscribe(buffer int) (<-chan *domain.DocumentEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *domain.DocumentEvent, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish delivers the event to every subscriber without blocking. A full
// subscriber buffer drops the event for that subscriber only.
func (b *Bus) Publish(ev *domain.DocumentEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn("subscriber buffer full, event dropped", "event_id", ev.ID, "document_id", ev.DocumentID)
		}
	}
}

// Close closes every subscriber channel. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
