package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
)

// SessionBroker fans session change events out to subscribers.
// Channel subscribers lose events rather than block publishers; listeners
// registered with Listen run inline and see every event.
type SessionBroker struct {
	mu        sync.RWMutex
	subs      map[int]chan models.SessionEvent
	listeners map[int]func(models.SessionEvent)
	nextID    int
	buffer    int
	closed    bool
	logger    *zap.Logger
}

// NewSessionBroker creates a broker whose subscriber channels hold buffer events.
func NewSessionBroker(buffer int, logger *zap.Logger) *SessionBroker {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionBroker{
		subs:      make(map[int]chan models.SessionEvent),
		listeners: make(map[int]func(models.SessionEvent)),
		buffer:    buffer,
		logger:    logger,
	}
}

// Subscribe registers a channel listener. The returned func unsubscribes and closes the channel.
// After Close the channel is returned already closed.
func (b *SessionBroker) Subscribe() (<-chan models.SessionEvent, func()) {
	ch := make(chan models.SessionEvent, b.buffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Listen registers fn to be called synchronously for every published event.
// fn must not block. The returned func removes it.
func (b *SessionBroker) Listen(fn func(models.SessionEvent)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Publish runs every listener, then delivers evt to every subscriber without blocking.
func (b *SessionBroker) Publish(evt models.SessionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.listeners {
		fn(evt)
	}
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.logger.Warn("session event dropped", zap.Int("subscriber", id), zap.String("type", string(evt.Type)))
		}
	}
}

// Close ends every open subscription so streaming handlers return. Listeners stay registered.
func (b *SessionBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of active channel subscribers.
func (b *SessionBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
