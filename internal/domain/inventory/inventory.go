package inventory

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrInsufficientStock is returned by Reserve when the inventory service
// rejects the reservation for lack of available stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// Item is one product quantity to hold.
type Item struct {
	ProductID string
	Quantity  int
	Unit      string
}

// Client talks to the external inventory service. Reservations are
// time-bounded holds keyed by a caller-supplied idempotency token, so a
// retried Reserve with the same token is safe.
type Client interface {
	// Reserve returns the reservation id to release the hold with later.
	Reserve(ctx context.Context, items []Item, idempotencyToken string) (string, error)
	Release(ctx context.Context, reservationID string) error
}
