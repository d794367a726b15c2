package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/catalog"
)

// Order represents one customer purchase with its frozen money snapshot.
// Totals are computed once at creation and never recomputed: the invariant
// GrandTotal = Subtotal - DiscountTotal + TaxTotal holds for every persisted
// order.
type Order struct {
	ID               string
	ClientID         string
	SellerID         *string
	BranchID         *string
	PaymentMethod    string
	DeliveryDate     *time.Time
	Origin           string
	Subtotal         decimal.Decimal
	DiscountTotal    decimal.Decimal
	TaxTotal         decimal.Decimal
	GrandTotal       decimal.Decimal
	DeliveryPoint    *catalog.Point
	Notes            string
	Status           Status
	ReservationToken *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Lines      []Line
	Promotions []AppliedPromotion
}

// Line is one product line within an order. Lines are written in the same
// transaction as the order and are immutable afterwards; corrections require
// a new order.
type Line struct {
	ID             string
	OrderID        string
	ProductID      string
	SKU            string
	Name           string
	Quantity       int
	Unit           string
	ListPrice      decimal.Decimal
	FinalPrice     decimal.Decimal
	PromotionID    *string
	DiscountReason *string
}

// AppliedPromotion is the audit record of a discount actually applied to a
// line. Created alongside the owning line, never updated.
type AppliedPromotion struct {
	OrderID       string
	OrderLineID   string
	CampaignID    string
	DiscountType  string
	DiscountValue decimal.Decimal
	AppliedAmount decimal.Decimal
}

// StatusHistory is one entry of the append-only transition audit trail.
// ActorID is nil for system-driven transitions.
type StatusHistory struct {
	OrderID   string
	Previous  Status
	Next      Status
	ActorID   *string
	Comment   string
	CreatedAt time.Time
}

// Repository persists the order aggregate.
//
// Create writes the full graph (order, lines, applied promotions) in one
// transaction, so no reader ever observes a partially written order.
// UpdateStatus writes the status change and its history row in one
// transaction, guarded on hist.Previous still being the current status.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, next Status, hist *StatusHistory) error
}
