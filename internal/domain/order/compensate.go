package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/inventory"
)

// releaseTimeout bounds a compensation attempt. Compensation runs after the
// triggering request may already have timed out, so it detaches from the
// caller's deadline and uses its own.
const releaseTimeout = 10 * time.Second

// Compensator releases stock reservations after a failed creation or a
// cancelling transition. Release is always best-effort: by the time
// compensation runs, either no order was persisted (the hold expires on its
// own) or the order's own state change already committed and must not be
// undone by an inventory hiccup.
type Compensator struct {
	inventory inventory.Client
	lg        *zap.Logger
}

// NewCompensator creates a Compensator backed by the given inventory client.
func NewCompensator(inv inventory.Client, lg *zap.Logger) *Compensator {
	return &Compensator{inventory: inv, lg: lg}
}

// Release releases the reservation identified by token. Errors are logged
// at error level, flagged for operators (a stranded reservation ties up
// stock), and never returned.
func (c *Compensator) Release(ctx context.Context, token string) {
	if token == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := c.inventory.Release(ctx, token); err != nil {
		c.lg.Error("reservation release failed, stock hold may be stranded",
			zap.String("reservation_token", token),
			zap.Error(err),
		)
		return
	}

	c.lg.Info("reservation released", zap.String("reservation_token", token))
}
