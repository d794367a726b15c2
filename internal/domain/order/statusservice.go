package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// StatusService validates and executes order status transitions, writing the
// audit trail and releasing the stock reservation on cancelling transitions.
type StatusService struct {
	orders      Repository
	compensator *Compensator
	lg          *zap.Logger
	now         func() time.Time
}

// NewStatusService creates a StatusService.
func NewStatusService(orders Repository, compensator *Compensator, lg *zap.Logger) *StatusService {
	return &StatusService{
		orders:      orders,
		compensator: compensator,
		lg:          lg,
		now:         time.Now,
	}
}

// ChangeStatus moves the order to next, recording a history row in the same
// transaction. A transition to the order's current status is a no-op, which
// is what makes redelivered notifications idempotent. After a cancelling
// transition commits, the order's reservation is released best-effort; a
// release failure never undoes the committed status change.
func (s *StatusService) ChangeStatus(ctx context.Context, orderID string, next Status, actorID *string, comment string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, o, next, actorID, comment)
}

// CancelOrder cancels the order, which is only legal while it is PENDIENTE
// or APROBADO. Cancellation is a transition to ANULADO with the same history
// and reservation-release behaviour as ChangeStatus.
func (s *StatusService) CancelOrder(ctx context.Context, orderID string, actorID *string, reason string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	cancellable := false
	for _, st := range cancellableFrom {
		if o.Status == st {
			cancellable = true
			break
		}
	}
	if !cancellable {
		return nil, &NotCancellableError{Current: o.Status, Allowed: cancellableFrom}
	}

	return s.apply(ctx, o, StatusVoided, actorID, reason)
}

func (s *StatusService) apply(ctx context.Context, o *Order, next Status, actorID *string, comment string) (*Order, error) {
	if o.Status == next {
		// Legal no-op: nothing to write.
		return o, nil
	}
	if err := CanTransition(o.Status, next); err != nil {
		return nil, err
	}

	if comment == "" {
		comment = fmt.Sprintf("transition from %s to %s", o.Status, next)
	}

	hist := &StatusHistory{
		OrderID:   o.ID,
		Previous:  o.Status,
		Next:      next,
		ActorID:   actorID,
		Comment:   comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, next, hist); err != nil {
		return nil, errors.Wrap(err, "update status")
	}

	prev := o.Status
	o.Status = next
	o.UpdatedAt = hist.CreatedAt

	s.lg.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)

	if next == StatusVoided || next == StatusRejected {
		if o.ReservationToken != nil {
			s.compensator.Release(ctx, *o.ReservationToken)
		}
	}

	return o, nil
}
