package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/cart"
)

var _ cart.Reader = (*CartClient)(nil)

// CartClient implements cart.Reader against the cart service.
type CartClient struct {
	base
}

// NewCartClient creates a CartClient. A nil http.Client gets the default
// timeout.
func NewCartClient(baseURL string, client *http.Client) *CartClient {
	return &CartClient{base: newBase(baseURL, client)}
}

// GetCart resolves the cart for the owner/seller pair, or nil when none
// exists.
func (c *CartClient) GetCart(ctx context.Context, ownerID string, sellerID *string) (*cart.Cart, error) {
	q := url.Values{"ownerId": {ownerID}}
	if sellerID != nil {
		q.Set("sellerId", *sellerID)
	}

	status, body, err := c.do(ctx, http.MethodGet, "/carts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
	default:
		return nil, errors.Errorf("get cart: unexpected status %d", status)
	}

	var crt cart.Cart
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			crt.ID, err = d.Str()
		case "clientId":
			crt.ClientID, err = d.Str()
		case "lines":
			err = d.Arr(func(d *jx.Decoder) error {
				var ln cart.Line
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						ln.ProductID, err = d.Str()
					case "sku":
						ln.SKU, err = d.Str()
					case "name":
						ln.Name, err = d.Str()
					case "quantity":
						ln.Quantity, err = d.Int()
					case "unit":
						ln.Unit, err = d.Str()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				crt.Lines = append(crt.Lines, ln)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return &crt, nil
}

// ClearByID empties the cart identified by cartID. Clearing an already
// cleared cart is success.
func (c *CartClient) ClearByID(ctx context.Context, cartID string) error {
	status, _, err := c.do(ctx, http.MethodDelete, "/carts/"+url.PathEscape(cartID), nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return errors.Errorf("clear cart %s: unexpected status %d", cartID, status)
	}
}
