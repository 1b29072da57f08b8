package router_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizpr/ringctl/eventbus"
	"github.com/wizpr/ringctl/gesture"
	"github.com/wizpr/ringctl/mapping"
	"github.com/wizpr/ringctl/router"
)

func quietTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestDispatcher_EndToEnd(t *testing.T) {
	logger := quietTestLogger()

	bus := eventbus.New(logger)
	table := mapping.NewTable(nil, logger)
	r := router.New(logger)

	var dispatched []map[string]any
	r.Register("toggle_listen", func(ctx context.Context, payload map[string]any) error {
		dispatched = append(dispatched, payload)
		return nil
	})

	d := router.NewDispatcher(table, r, logger)
	d.Bind(bus, gesture.Topics()...)

	payload := gesture.GesturePayload{UUID: "c1", Text: "single"}
	bus.Publish(context.Background(), gesture.TopicButtonSingle, payload)

	require.Len(t, dispatched, 1)
	assert.Equal(t, map[string]any{
		"action":  "toggle_listen",
		"topic":   gesture.TopicButtonSingle,
		"payload": payload,
	}, dispatched[0])
}

func TestDispatcher_TopicFeedingMultipleActions(t *testing.T) {
	logger := quietTestLogger()

	bus := eventbus.New(logger)
	table := mapping.NewTable(nil, logger)
	table.Add("noop", "button_long")

	r := router.New(logger)
	var actions []string
	for _, name := range []string{"cycle_llm", "noop"} {
		name := name
		r.Register(name, func(ctx context.Context, payload map[string]any) error {
			actions = append(actions, name)
			return nil
		})
	}

	router.NewDispatcher(table, r, logger).Bind(bus, gesture.Topics()...)
	bus.Publish(context.Background(), gesture.TopicButtonLong, nil)

	assert.ElementsMatch(t, []string{"cycle_llm", "noop"}, actions)
}

func TestDispatcher_CustomVocabularyTopicFiresMappedAction(t *testing.T) {
	logger := quietTestLogger()

	bus := eventbus.New(logger)
	table := mapping.NewTable(nil, logger)
	table.Add("wave_action", "swipe_up")

	r := router.New(logger)
	fired := false
	r.Register("wave_action", func(ctx context.Context, payload map[string]any) error {
		fired = true
		return nil
	})

	// Binding must follow the vocabulary in use, not the built-in topic
	// list, or a profile-defined gesture never reaches its action.
	vocab := gesture.Vocabulary{"up": "swipe_up"}
	router.NewDispatcher(table, r, logger).Bind(bus, vocab.Topics()...)

	for _, ev := range vocab.Classify("c1", []byte("up")) {
		bus.Publish(context.Background(), ev.Topic, ev.Payload)
	}

	assert.True(t, fired)
}

func TestDispatcher_UnmappedTopicDispatchesNothing(t *testing.T) {
	logger := quietTestLogger()

	bus := eventbus.New(logger)
	table := mapping.NewTable(nil, logger)
	r := router.New(logger)

	called := false
	r.Register("toggle_listen", func(ctx context.Context, payload map[string]any) error {
		called = true
		return nil
	})

	router.NewDispatcher(table, r, logger).Bind(bus, "raw_notify")
	bus.Publish(context.Background(), "raw_notify", nil)

	assert.False(t, called)
}

func TestDispatcher_ActionWithoutHandlerIsSilent(t *testing.T) {
	logger := quietTestLogger()

	bus := eventbus.New(logger)
	table := mapping.NewTable(nil, logger)
	r := router.New(logger)

	// Default table maps all three gestures, none registered here.
	d := router.NewDispatcher(table, r, logger)
	d.Bind(bus, gesture.Topics()...)

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), gesture.TopicButtonDouble, nil)
	})
}
