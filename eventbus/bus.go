// Package eventbus provides a topic-keyed publish/subscribe hub that
// decouples notification producers from action consumers.
package eventbus

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler consumes a published payload. A non-nil error is logged at the bus
// boundary and never surfaces to the publisher or to sibling handlers.
type Handler func(ctx context.Context, payload any) error

// Bus routes published payloads to handlers registered per topic.
//
// Handlers for one topic run sequentially in subscription order on the
// publisher's goroutine; distinct Publish calls are independent of each other.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Handler
	logger *logrus.Logger
}

// New creates an event bus.
func New(logger *logrus.Logger) *Bus {
	if logger == nil {
		logger = logrus.New()
	}

	return &Bus{
		subs:   make(map[string][]Handler),
		logger: logger,
	}
}

// Subscribe registers handler for topic. Subscribing the same handler twice
// yields two invocations per publish; there is no deduplication and no
// unsubscribe, matching the lifetime of the wiring set up at startup.
func (b *Bus) Subscribe(topic string, handler Handler) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[topic] = append(b.subs[topic], handler)
}

// Publish invokes every handler registered for topic in subscription order,
// awaiting each in turn. A topic with no subscribers is a silent no-op.
//
// A failing handler (error return or panic) never prevents the remaining
// handlers from running; the failure is logged and terminal at this boundary.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[topic]))
	copy(handlers, b.subs[topic])
	b.mu.RUnlock()

	for i, h := range handlers {
		b.invoke(ctx, topic, i, h, payload)
	}
}

// SubscriberCount reports how many handlers are registered for topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// invoke runs a single handler, converting panics into logged failures so a
// misbehaving consumer cannot abort the dispatch chain.
func (b *Bus) invoke(ctx context.Context, topic string, idx int, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(logrus.Fields{
				"topic":   topic,
				"handler": idx,
				"panic":   r,
			}).Error("Event handler panicked")
		}
	}()

	if err := h(ctx, payload); err != nil {
		b.logger.WithFields(logrus.Fields{
			"topic":   topic,
			"handler": idx,
		}).WithError(err).Warn("Event handler failed")
	}
}
