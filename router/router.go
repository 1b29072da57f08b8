// Package router maps named application actions to handlers and bridges the
// event bus to them through the mapping table.
package router

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler executes a named action. Failures are logged at the router
// boundary and never propagate to the dispatching call site.
type Handler func(ctx context.Context, payload map[string]any) error

// Router is a registry of named action handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *logrus.Logger
}

// New creates an action router.
func New(logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}

	return &Router{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register binds handler to action. Registering the same action twice
// replaces the prior handler; last registration wins so the application
// layer can hot-swap handlers.
func (r *Router) Register(action string, handler Handler) {
	if handler == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = handler
}

// Dispatch runs the handler registered for action. An unknown action is a
// silent no-op so mapping tables may reference actions that are not wired
// yet. A nil payload defaults to {"action": action}.
func (r *Router) Dispatch(ctx context.Context, action string, payload map[string]any) {
	r.mu.RLock()
	handler, ok := r.handlers[action]
	r.mu.RUnlock()

	if !ok {
		r.logger.WithField("action", action).Debug("No handler registered for action")
		return
	}

	if payload == nil {
		payload = map[string]any{"action": action}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithFields(logrus.Fields{
				"action": action,
				"panic":  rec,
			}).Error("Action handler panicked")
		}
	}()

	if err := handler(ctx, payload); err != nil {
		r.logger.WithField("action", action).WithError(err).Warn("Action handler failed")
	}
}

// Registered reports whether a handler is bound to action.
func (r *Router) Registered(action string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[action]
	return ok
}
