package eventbus

import (
	"context"
	"sync"

	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
)

// Listener reacts to one event. A listener may call Dispatch again; delivery
// is synchronous and reentrant within the calling goroutine.
type Listener func(ctx context.Context, payload any) error

// Bus is an in-process publish/subscribe bus. Listeners for a topic run in
// registration order, in the publisher's goroutine. There is no persistence,
// no retry, and no cross-process delivery; the bus only decouples "what
// happened" from "who reacts" within a single request.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

func New() *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
	}
}

// Listen registers a listener for a topic. Registration happens once at
// startup; it is safe but not expected to register mid-flight.
func (b *Bus) Listen(topic string, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners[topic] = append(b.listeners[topic], l)
}

// Dispatch delivers payload to every listener of topic, in order. A failing
// listener is logged and counted but does not stop later listeners: effects
// already committed by earlier listeners must not be blocked by one broken
// reaction.
func (b *Bus) Dispatch(ctx context.Context, topic string, payload any) {
	b.mu.RLock()
	ls := b.listeners[topic]
	b.mu.RUnlock()

	EventsDispatchedTotal.WithLabelValues(topic).Inc()

	for _, l := range ls {
		if err := l(ctx, payload); err != nil {
			ListenerErrorsTotal.WithLabelValues(topic).Inc()
			logger.Error("event listener failed", "topic", topic, "error", err)
		}
	}
}
