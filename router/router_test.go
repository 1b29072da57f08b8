package router

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestRouter_DispatchUnknownActionIsNoOp(t *testing.T) {
	r := New(quietLogger())

	assert.NotPanics(t, func() {
		r.Dispatch(context.Background(), "not_registered", nil)
	})
}

func TestRouter_DispatchInvokesHandler(t *testing.T) {
	r := New(quietLogger())

	var got map[string]any
	r.Register("toggle_listen", func(ctx context.Context, payload map[string]any) error {
		got = payload
		return nil
	})

	r.Dispatch(context.Background(), "toggle_listen", map[string]any{"topic": "button_single"})

	assert.Equal(t, map[string]any{"topic": "button_single"}, got)
}

func TestRouter_DispatchDefaultsPayload(t *testing.T) {
	r := New(quietLogger())

	var got map[string]any
	r.Register("toggle_listen", func(ctx context.Context, payload map[string]any) error {
		got = payload
		return nil
	})

	r.Dispatch(context.Background(), "toggle_listen", nil)

	assert.Equal(t, map[string]any{"action": "toggle_listen"}, got)
}

func TestRouter_LastRegistrationWins(t *testing.T) {
	r := New(quietLogger())

	var calls []string
	r.Register("action", func(ctx context.Context, payload map[string]any) error {
		calls = append(calls, "first")
		return nil
	})
	r.Register("action", func(ctx context.Context, payload map[string]any) error {
		calls = append(calls, "second")
		return nil
	})

	r.Dispatch(context.Background(), "action", nil)

	assert.Equal(t, []string{"second"}, calls)
}

func TestRouter_HandlerFailuresDoNotPropagate(t *testing.T) {
	r := New(quietLogger())

	r.Register("errors", func(ctx context.Context, payload map[string]any) error {
		return errors.New("boom")
	})
	r.Register("panics", func(ctx context.Context, payload map[string]any) error {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		r.Dispatch(context.Background(), "errors", nil)
		r.Dispatch(context.Background(), "panics", nil)
	})
}

func TestRouter_Registered(t *testing.T) {
	r := New(quietLogger())

	require.False(t, r.Registered("noop"))
	r.Register("noop", func(ctx context.Context, payload map[string]any) error { return nil })
	assert.True(t, r.Registered("noop"))
}
