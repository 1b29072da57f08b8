package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/wizpr/ringctl/eventbus"
)

// TriggerSource resolves which actions a topic fires. Satisfied by
// mapping.Table.
type TriggerSource interface {
	TriggersFor(topic string) []string
}

// Dispatcher subscribes to gesture topics and turns each publish into action
// dispatches via the mapping table.
type Dispatcher struct {
	triggers TriggerSource
	router   *Router
	logger   *logrus.Logger
}

// NewDispatcher creates the bus-to-router bridge.
func NewDispatcher(triggers TriggerSource, router *Router, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}

	return &Dispatcher{
		triggers: triggers,
		router:   router,
		logger:   logger,
	}
}

// Bind subscribes the dispatcher to each topic on bus. On every publish it
// consults the mapping table and dispatches each returned action with a
// payload of {action, topic, payload}.
func (d *Dispatcher) Bind(bus *eventbus.Bus, topics ...string) {
	for _, topic := range topics {
		topic := topic
		bus.Subscribe(topic, func(ctx context.Context, payload any) error {
			d.dispatchTopic(ctx, topic, payload)
			return nil
		})
	}
	d.logger.WithField("topics", topics).Debug("Dispatcher bound to gesture topics")
}

func (d *Dispatcher) dispatchTopic(ctx context.Context, topic string, payload any) {
	for _, action := range d.triggers.TriggersFor(topic) {
		d.logger.WithFields(logrus.Fields{
			"topic":  topic,
			"action": action,
		}).Debug("Dispatching action")

		d.router.Dispatch(ctx, action, map[string]any{
			"action":  action,
			"topic":   topic,
			"payload": payload,
		})
	}
}
