package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/warehouse"
)

var _ warehouse.Client = (*WarehouseClient)(nil)

// WarehouseClient implements warehouse.Client against the warehouse service.
type WarehouseClient struct {
	base
}

// NewWarehouseClient creates a WarehouseClient. A nil http.Client gets the
// default timeout.
func NewWarehouseClient(baseURL string, client *http.Client) *WarehouseClient {
	return &WarehouseClient{base: newBase(baseURL, client)}
}

// ConfirmPicking tells the warehouse to pick the order, passing the
// reservation id when known.
func (c *WarehouseClient) ConfirmPicking(ctx context.Context, orderID string, reservationID *string) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Str(orderID) })
		if reservationID != nil {
			e.Field("reservationId", func(e *jx.Encoder) { e.Str(*reservationID) })
		}
	})

	status, _, err := c.do(ctx, http.MethodPost, "/pickings/confirm", e.Bytes())
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusAccepted {
		return errors.Errorf("confirm picking for order %s: unexpected status %d", orderID, status)
	}
	return nil
}

// GetPicking fetches the picking record.
func (c *WarehouseClient) GetPicking(ctx context.Context, pickingID string) (*warehouse.Picking, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/pickings/"+url.PathEscape(pickingID), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusNotFound:
		return nil, warehouse.ErrPickingNotFound
	case http.StatusOK:
	default:
		return nil, errors.Errorf("get picking %s: unexpected status %d", pickingID, status)
	}

	var p warehouse.Picking
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "orderId":
			p.OrderID, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode picking")
	}
	return &p, nil
}
