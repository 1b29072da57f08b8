package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestBus() *Bus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(logger)
}

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	bus := newTestBus()

	var calls []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		bus.Subscribe("topic", func(ctx context.Context, payload any) error {
			calls = append(calls, name)
			return nil
		})
	}

	bus.Publish(context.Background(), "topic", nil)

	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestBus_PublishUnknownTopicIsNoOp(t *testing.T) {
	bus := newTestBus()

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), "nobody-listens", "payload")
	})
}

func TestBus_FailureIsolation(t *testing.T) {
	tests := []struct {
		name string
		fail Handler
	}{
		{
			name: "handler error does not stop later handlers",
			fail: func(ctx context.Context, payload any) error {
				return errors.New("boom")
			},
		},
		{
			name: "handler panic does not stop later handlers",
			fail: func(ctx context.Context, payload any) error {
				panic("boom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newTestBus()

			var calls []string
			bus.Subscribe("topic", func(ctx context.Context, payload any) error {
				calls = append(calls, "before")
				return nil
			})
			bus.Subscribe("topic", tt.fail)
			bus.Subscribe("topic", func(ctx context.Context, payload any) error {
				calls = append(calls, "after")
				return nil
			})

			assert.NotPanics(t, func() {
				bus.Publish(context.Background(), "topic", nil)
			})
			assert.Equal(t, []string{"before", "after"}, calls)
		})
	}
}

func TestBus_DoubleSubscribeYieldsTwoInvocations(t *testing.T) {
	bus := newTestBus()

	count := 0
	handler := func(ctx context.Context, payload any) error {
		count++
		return nil
	}

	bus.Subscribe("topic", handler)
	bus.Subscribe("topic", handler)
	bus.Publish(context.Background(), "topic", nil)

	assert.Equal(t, 2, count)
	assert.Equal(t, 2, bus.SubscriberCount("topic"))
}

func TestBus_PayloadReachesHandlers(t *testing.T) {
	bus := newTestBus()

	var got any
	bus.Subscribe("topic", func(ctx context.Context, payload any) error {
		got = payload
		return nil
	})

	bus.Publish(context.Background(), "topic", map[string]any{"key": "value"})

	assert.Equal(t, map[string]any{"key": "value"}, got)
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := newTestBus()

	var calls []string
	bus.Subscribe("a", func(ctx context.Context, payload any) error {
		calls = append(calls, "a")
		return nil
	})
	bus.Subscribe("b", func(ctx context.Context, payload any) error {
		calls = append(calls, "b")
		return nil
	})

	bus.Publish(context.Background(), "a", nil)

	assert.Equal(t, []string{"a"}, calls)
}

func BenchmarkBus_Publish(b *testing.B) {
	bus := newTestBus()
	for i := 0; i < 4; i++ {
		bus.Subscribe("topic", func(ctx context.Context, payload any) error {
			return nil
		})
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(ctx, "topic", i)
	}
}
