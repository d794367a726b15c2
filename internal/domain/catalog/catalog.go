package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is the catalog's answer for one product/client pair: the list price,
// the price after the best eligible promotion, and the campaign that
// produced it. CampaignID is empty when the quote is a plain price.
type Quote struct {
	ListPrice     decimal.Decimal
	FinalPrice    decimal.Decimal
	CampaignID    string
	DiscountType  string
	DiscountValue decimal.Decimal
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// PriceResolver answers pricing questions against the external catalog.
type PriceResolver interface {
	// BestPromotion returns (nil, nil) when no promotion applies.
	BestPromotion(ctx context.Context, productID, clientID string) (*Quote, error)
	// AllPrices returns every active price for the product, possibly empty.
	AllPrices(ctx context.Context, productID string) ([]decimal.Decimal, error)
	// RevalidatePromotion reports whether the campaign is still valid for
	// the product.
	RevalidatePromotion(ctx context.Context, campaignID, productID string) (bool, error)
}

// LocationResolver answers geo and assignment questions against the catalog.
// Absence is expressed as a nil point or empty seller id, not an error.
type LocationResolver interface {
	BranchLocation(ctx context.Context, branchID string) (*Point, error)
	ClientLocation(ctx context.Context, clientID string) (*Point, error)
	AssignedSeller(ctx context.Context, clientID string) (string, error)
}
