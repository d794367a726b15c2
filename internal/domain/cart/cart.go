package cart

import "context"

// Line is one product line in a cart, carrying the catalog snapshot taken
// when the line was added.
type Line struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  int
	Unit      string
}

// Cart is the read model of a customer's cart for one (owner, seller) pair.
type Cart struct {
	ID       string
	ClientID string
	Lines    []Line
}

// Reader exposes the narrow cart surface the order flow needs: resolve the
// cart for an owner/seller pair and clear it by its identifier. Clearing by
// id rather than by owner avoids racing concurrent cart edits.
type Reader interface {
	// GetCart returns nil when no cart exists for the pair.
	GetCart(ctx context.Context, ownerID string, sellerID *string) (*Cart, error)
	ClearByID(ctx context.Context, cartID string) error
}
