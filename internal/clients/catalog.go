package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/catalog"
)

var (
	_ catalog.PriceResolver    = (*CatalogClient)(nil)
	_ catalog.LocationResolver = (*CatalogClient)(nil)
)

// CatalogClient implements the catalog's pricing and location contracts.
type CatalogClient struct {
	base
}

// NewCatalogClient creates a CatalogClient. A nil http.Client gets the
// default timeout.
func NewCatalogClient(baseURL string, client *http.Client) *CatalogClient {
	return &CatalogClient{base: newBase(baseURL, client)}
}

// BestPromotion returns the best eligible promotion quote for the product
// and client, or (nil, nil) when the catalog has none.
func (c *CatalogClient) BestPromotion(ctx context.Context, productID, clientID string) (*catalog.Quote, error) {
	path := "/products/" + url.PathEscape(productID) + "/promotions/best?clientId=" + url.QueryEscape(clientID)
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
	default:
		return nil, errors.Errorf("best promotion: unexpected status %d", status)
	}

	var q catalog.Quote
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "listPrice":
			q.ListPrice, err = decDecimal(d)
		case "finalPrice":
			q.FinalPrice, err = decDecimal(d)
		case "campaignId":
			q.CampaignID, err = d.Str()
		case "discountType":
			q.DiscountType, err = d.Str()
		case "discountValue":
			q.DiscountValue, err = decDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode quote")
	}
	return &q, nil
}

// AllPrices returns every active price for the product, possibly empty.
func (c *CatalogClient) AllPrices(ctx context.Context, productID string) ([]decimal.Decimal, error) {
	path := "/products/" + url.PathEscape(productID) + "/prices"
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusNotFound:
		return nil, nil
	case http.StatusOK:
	default:
		return nil, errors.Errorf("all prices: unexpected status %d", status)
	}

	var prices []decimal.Decimal
	d := jx.DecodeBytes(body)
	err = d.Arr(func(d *jx.Decoder) error {
		p, err := decDecimal(d)
		if err != nil {
			return err
		}
		prices = append(prices, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode prices")
	}
	return prices, nil
}

// RevalidatePromotion reports whether the campaign is still valid for the
// product. An unknown campaign counts as invalid.
func (c *CatalogClient) RevalidatePromotion(ctx context.Context, campaignID, productID string) (bool, error) {
	path := "/campaigns/" + url.PathEscape(campaignID) + "/validate?productId=" + url.QueryEscape(productID)
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusNotFound:
		return false, nil
	case http.StatusOK:
	default:
		return false, errors.Errorf("revalidate promotion: unexpected status %d", status)
	}

	var valid bool
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "valid" {
			return d.Skip()
		}
		var err error
		valid, err = d.Bool()
		return err
	})
	if err != nil {
		return false, errors.Wrap(err, "decode validation")
	}
	return valid, nil
}

// BranchLocation returns the branch's coordinates, or nil when unknown.
func (c *CatalogClient) BranchLocation(ctx context.Context, branchID string) (*catalog.Point, error) {
	return c.location(ctx, "/branches/"+url.PathEscape(branchID)+"/location")
}

// ClientLocation returns the client's coordinates, or nil when unknown.
func (c *CatalogClient) ClientLocation(ctx context.Context, clientID string) (*catalog.Point, error) {
	return c.location(ctx, "/clients/"+url.PathEscape(clientID)+"/location")
}

func (c *CatalogClient) location(ctx context.Context, path string) (*catalog.Point, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
	default:
		return nil, errors.Errorf("location: unexpected status %d", status)
	}

	var pt catalog.Point
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "lat":
			pt.Lat, err = d.Float64()
		case "lng":
			pt.Lng, err = d.Float64()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode location")
	}
	return &pt, nil
}

// AssignedSeller returns the seller assigned to the client, or "" when the
// client has none.
func (c *CatalogClient) AssignedSeller(ctx context.Context, clientID string) (string, error) {
	path := "/clients/" + url.PathEscape(clientID) + "/assigned-seller"
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusNotFound, http.StatusNoContent:
		return "", nil
	case http.StatusOK:
	default:
		return "", errors.Errorf("assigned seller: unexpected status %d", status)
	}

	var sellerID string
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "sellerId" {
			return d.Skip()
		}
		var err error
		sellerID, err = d.Str()
		return err
	})
	if err != nil {
		return "", errors.Wrap(err, "decode assigned seller")
	}
	return sellerID, nil
}
