package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order operations.
var (
	// ErrEmptyCart is returned when the resolved cart has no lines. No
	// reservation or pricing work has happened at that point.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrStatusConflict is returned when a status update lost the race
	// against a concurrent transition on the same order.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// InvalidQuantityError indicates a cart line has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InsufficientStockError indicates the inventory service refused the
// reservation, either as a business rejection or a transport failure of the
// reservation step.
type InsufficientStockError struct {
	Cause error
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock reservation failed: %v", e.Cause)
}

func (e *InsufficientStockError) Unwrap() error { return e.Cause }

// PricingUnavailableError indicates no promotion and no active price could
// be resolved for a product. By the time it occurs the reservation has
// already been taken, so the caller sees it only after compensation ran.
type PricingUnavailableError struct {
	ProductID string
	Cause     error
}

func (e *PricingUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no price available for product %s: %v", e.ProductID, e.Cause)
	}
	return fmt.Sprintf("no price available for product %s", e.ProductID)
}

func (e *PricingUnavailableError) Unwrap() error { return e.Cause }

// ExpiredPromotionError indicates a line carried a promotion that the
// catalog confirmed is no longer valid.
type ExpiredPromotionError struct {
	CampaignID string
	ProductID  string
}

func (e *ExpiredPromotionError) Error() string {
	return fmt.Sprintf("promotion %s expired for product %s", e.CampaignID, e.ProductID)
}

// IllegalTransitionError indicates a status change that the transition
// graph forbids. No writes happen when it is returned.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %s to %s", e.From, e.To)
}

// NotCancellableError indicates a cancellation attempt on an order whose
// current status is outside the cancellable set.
type NotCancellableError struct {
	Current Status
	Allowed []Status
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("order in status %s cannot be cancelled (allowed: %v)", e.Current, e.Allowed)
}
