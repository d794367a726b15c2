package listener

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestListener() *Listener {
	return New(Config{DatabaseURL: "postgres://localhost/ignored"}, zap.NewNop())
}

func TestDispatch_RoutesToHandler(t *testing.T) {
	l := newTestListener()

	var got []string
	l.Handle("order_created", func(_ context.Context, payload string) error {
		got = append(got, payload)
		return nil
	})

	l.dispatch(context.Background(), Notification{Channel: "order_created", Payload: "o1"})
	l.dispatch(context.Background(), Notification{Channel: "order_created", Payload: "o2"})

	assert.Equal(t, []string{"o1", "o2"}, got)
}

func TestDispatch_UnhandledChannel(t *testing.T) {
	l := newTestListener()

	assert.NotPanics(t, func() {
		l.dispatch(context.Background(), Notification{Channel: "unknown_channel", Payload: "x"})
	})
}

func TestDispatch_AbsorbsHandlerError(t *testing.T) {
	l := newTestListener()

	calls := 0
	l.Handle("order_approved", func(context.Context, string) error {
		calls++
		return errors.New("boom")
	})

	l.dispatch(context.Background(), Notification{Channel: "order_approved", Payload: "o1"})
	l.dispatch(context.Background(), Notification{Channel: "order_approved", Payload: "o1"})

	assert.Equal(t, 2, calls, "a failing handler must not unregister itself")
}

func TestDispatch_AbsorbsHandlerPanic(t *testing.T) {
	l := newTestListener()

	l.Handle("picking_completed", func(context.Context, string) error {
		panic("handler bug")
	})

	assert.NotPanics(t, func() {
		l.dispatch(context.Background(), Notification{Channel: "picking_completed", Payload: "p1"})
	})
}

func TestReady_ReflectsConnection(t *testing.T) {
	l := newTestListener()

	require.Error(t, l.Ready(context.Background()))

	l.connected.Store(true)
	assert.NoError(t, l.Ready(context.Background()))

	l.connected.Store(false)
	assert.Error(t, l.Ready(context.Background()))
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	l := newTestListener()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The dial fails against a cancelled context; Run must treat that as a
	// shutdown, not a reconnectable failure.
	require.NoError(t, l.Run(ctx))
}

func TestNew_DefaultsBackoff(t *testing.T) {
	l := New(Config{DatabaseURL: "postgres://localhost/ignored"}, zap.NewNop())
	assert.Equal(t, DefaultBackoff, l.cfg.Backoff)
}
