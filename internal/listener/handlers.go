package listener

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/order"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/warehouse"
)

// Channel names. order_created / order_approved / order_delivered are
// emitted by the order schema's triggers; picking_completed is emitted by
// the warehouse service into the same database.
const (
	ChannelOrderCreated     = "order_created"
	ChannelOrderApproved    = "order_approved"
	ChannelOrderDelivered   = "order_delivered"
	ChannelPickingCompleted = "picking_completed"
)

// StatusChanger is the slice of the status service the handlers need.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, orderID string, next order.Status, actorID *string, comment string) (*order.Order, error)
}

// Handlers reacts to order lifecycle notifications.
type Handlers struct {
	orders    order.Repository
	status    StatusChanger
	warehouse warehouse.Client
	lg        *zap.Logger
}

// NewHandlers creates the notification handlers.
func NewHandlers(orders order.Repository, status StatusChanger, wh warehouse.Client, lg *zap.Logger) *Handlers {
	return &Handlers{orders: orders, status: status, warehouse: wh, lg: lg}
}

// Register wires every handler onto its channel.
func (h *Handlers) Register(l *Listener) {
	l.Handle(ChannelOrderCreated, h.OrderCreated)
	l.Handle(ChannelOrderApproved, h.OrderApproved)
	l.Handle(ChannelOrderDelivered, h.OrderDelivered)
	l.Handle(ChannelPickingCompleted, h.PickingCompleted)
}

// OrderCreated is an extension hook; creation currently needs no reaction.
func (h *Handlers) OrderCreated(context.Context, string) error {
	return nil
}

// OrderApproved asks the warehouse to start picking the approved order.
// The confirmation is best-effort: the approval already committed and a
// warehouse outage must not roll it back.
func (h *Handlers) OrderApproved(ctx context.Context, orderID string) error {
	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		return errors.Wrapf(err, "load order %q", orderID)
	}

	if err := h.warehouse.ConfirmPicking(ctx, o.ID, o.ReservationToken); err != nil {
		h.lg.Warn("picking confirmation failed, approval stands",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
	return nil
}

// OrderDelivered is an extension hook; delivery currently needs no reaction.
func (h *Handlers) OrderDelivered(context.Context, string) error {
	return nil
}

// PickingCompleted marks the picked order as PREPARADO. No retry is
// scheduled on failure: the warehouse redelivers through its own policy, and
// re-entry into PREPARADO is a no-op, so redelivery is safe.
func (h *Handlers) PickingCompleted(ctx context.Context, pickingID string) error {
	p, err := h.warehouse.GetPicking(ctx, pickingID)
	if err != nil {
		if errors.Is(err, warehouse.ErrPickingNotFound) {
			h.lg.Warn("picking not found, dropping notification", zap.String("picking_id", pickingID))
			return nil
		}
		return errors.Wrapf(err, "get picking %q", pickingID)
	}
	if p.OrderID == "" {
		h.lg.Warn("picking carries no order id, dropping notification", zap.String("picking_id", pickingID))
		return nil
	}

	if _, err := h.status.ChangeStatus(ctx, p.OrderID, order.StatusPrepared, nil, "picking completed"); err != nil {
		return errors.Wrapf(err, "mark order %q prepared", p.OrderID)
	}
	return nil
}
