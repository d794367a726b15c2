package warehouse

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrPickingNotFound is returned by GetPicking for an unknown picking id.
var ErrPickingNotFound = errors.New("picking not found")

// Picking is the warehouse's record of a stock-picking job for one order.
type Picking struct {
	ID      string
	OrderID string
}

// Client talks to the external warehouse service.
type Client interface {
	// ConfirmPicking tells the warehouse an approved order is ready to be
	// picked. The reservation id is passed along when known so the
	// warehouse can pick against the existing hold.
	ConfirmPicking(ctx context.Context, orderID string, reservationID *string) error
	GetPicking(ctx context.Context, pickingID string) (*Picking, error)
}
