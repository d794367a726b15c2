package clients

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/inventory"
)

var _ inventory.Client = (*InventoryClient)(nil)

// InventoryClient implements inventory.Client against the stock service's
// reservation API.
type InventoryClient struct {
	base
}

// NewInventoryClient creates an InventoryClient. A nil http.Client gets the
// default timeout.
func NewInventoryClient(baseURL string, client *http.Client) *InventoryClient {
	return &InventoryClient{base: newBase(baseURL, client)}
}

// Reserve creates a stock hold for the items. A 409 from the service means
// insufficient stock.
func (c *InventoryClient) Reserve(ctx context.Context, items []inventory.Item, idempotencyToken string) (string, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("idempotencyToken", func(e *jx.Encoder) { e.Str(idempotencyToken) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("unit", func(e *jx.Encoder) { e.Str(it.Unit) })
					})
				}
			})
		})
	})

	status, body, err := c.do(ctx, http.MethodPost, "/reservations", e.Bytes())
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusConflict:
		return "", inventory.ErrInsufficientStock
	case status != http.StatusOK && status != http.StatusCreated:
		return "", errors.Errorf("reserve: unexpected status %d", status)
	}

	var reservationID string
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "reservationId" {
			return d.Skip()
		}
		var err error
		reservationID, err = d.Str()
		return err
	})
	if err != nil {
		return "", errors.Wrap(err, "decode reservation")
	}
	if reservationID == "" {
		return "", errors.New("reserve: response carries no reservation id")
	}
	return reservationID, nil
}

// Release drops the hold. A 404 means the reservation already expired or was
// released, which is success for the caller's purposes.
func (c *InventoryClient) Release(ctx context.Context, reservationID string) error {
	status, _, err := c.do(ctx, http.MethodDelete, "/reservations/"+reservationID, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return errors.Errorf("release %s: unexpected status %d", reservationID, status)
	}
}
