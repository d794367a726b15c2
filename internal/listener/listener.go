// Package listener bridges database commit notifications back into order
// and warehouse operations. It owns a single dedicated connection to the
// notification channel, reconnecting forever on loss: order/warehouse
// consistency depends on it running, so giving up is not an option.
package listener

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// DefaultBackoff is the fixed delay between reconnect attempts.
const DefaultBackoff = 5 * time.Second

// Notification is one message received on a channel. Payloads are plain-text
// identifiers (an order or picking id).
type Notification struct {
	Channel string
	Payload string
}

// Handler processes one notification payload. Errors are absorbed and
// logged at the dispatch boundary; handlers must tolerate at-least-once
// redelivery of the same payload.
type Handler func(ctx context.Context, payload string) error

// Config holds listener settings.
type Config struct {
	DatabaseURL string
	Backoff     time.Duration
}

// Listener subscribes to a fixed set of named channels and dispatches each
// incoming notification to its registered handler.
type Listener struct {
	cfg       Config
	handlers  map[string]Handler
	lg        *zap.Logger
	connected atomic.Bool
}

// New creates a Listener. Register handlers with Handle before calling Run.
func New(cfg Config, lg *zap.Logger) *Listener {
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &Listener{
		cfg:      cfg,
		handlers: make(map[string]Handler),
		lg:       lg,
	}
}

// Handle registers the handler for a channel. Not safe to call after Run.
func (l *Listener) Handle(channel string, h Handler) {
	l.handlers[channel] = h
}

// Ready is a health check that passes while the listener holds a live
// subscription.
func (l *Listener) Ready(context.Context) error {
	if !l.connected.Load() {
		return errors.New("notification channel not connected")
	}
	return nil
}

// Run subscribes and processes notifications until ctx is cancelled. On any
// connection failure it waits the configured backoff and reconnects,
// indefinitely.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.lg.Warn("notification connection lost, reconnecting",
			zap.Duration("backoff", l.cfg.Backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.cfg.Backoff):
		}
	}
}

// listen opens one connection, subscribes to every registered channel, and
// dispatches notifications until the connection or context fails.
func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer conn.Close(context.WithoutCancel(ctx))

	for channel := range l.handlers {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return errors.Wrapf(err, "listen on %q", channel)
		}
	}

	l.connected.Store(true)
	defer l.connected.Store(false)
	l.lg.Info("notification listener connected", zap.Int("channels", len(l.handlers)))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return errors.Wrap(err, "wait for notification")
		}
		l.dispatch(ctx, Notification{Channel: n.Channel, Payload: n.Payload})
	}
}

// dispatch runs the handler for one notification. It is the absorption
// boundary: a failing or panicking handler never stops the listener loop.
func (l *Listener) dispatch(ctx context.Context, n Notification) {
	h, ok := l.handlers[n.Channel]
	if !ok {
		l.lg.Debug("notification on unhandled channel", zap.String("channel", n.Channel))
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			l.lg.Error("notification handler panicked",
				zap.String("channel", n.Channel),
				zap.String("payload", n.Payload),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
		}
	}()

	if err := h(ctx, n.Payload); err != nil {
		l.lg.Error("notification handler failed",
			zap.String("channel", n.Channel),
			zap.String("payload", n.Payload),
			zap.Error(err),
		)
	}
}
