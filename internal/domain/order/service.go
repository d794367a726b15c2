package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/cart"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/catalog"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/inventory"
)

// taxRate is the fixed tax applied to (subtotal - discount).
var taxRate = decimal.NewFromFloat(0.12)

// clearCartTimeout bounds the post-commit cart clear, which runs detached
// from the request.
const clearCartTimeout = 10 * time.Second

// Role identifies who is creating the order.
type Role string

const (
	// RoleClient is a self-service customer creating their own order.
	RoleClient Role = "client"
	// RoleSeller is a field seller creating an order for a customer.
	RoleSeller Role = "seller"
)

// CreateFromCartRequest holds the input for creating an order from a cart.
type CreateFromCartRequest struct {
	ActorID       string
	ActorRole     Role
	OwnerID       string
	SellerID      string // pre-assigned seller, optional
	BranchID      string // optional
	PaymentMethod string
	DeliveryDate  *time.Time
	Origin        string
	Notes         string
	Delivery      *catalog.Point  // explicit coordinates win over lookups
	OrderDiscount decimal.Decimal // explicit order-level discount
}

// Service orchestrates order creation: cart read, stock reservation,
// pricing resolution, transactional persistence, and compensation when a
// step fails after the reservation was taken.
type Service struct {
	carts       cart.Reader
	inventory   inventory.Client
	prices      catalog.PriceResolver
	locations   catalog.LocationResolver
	orders      Repository
	compensator *Compensator
	lg          *zap.Logger
	now         func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	carts cart.Reader,
	inv inventory.Client,
	prices catalog.PriceResolver,
	locations catalog.LocationResolver,
	orders Repository,
	compensator *Compensator,
	lg *zap.Logger,
) *Service {
	return &Service{
		carts:       carts,
		inventory:   inv,
		prices:      prices,
		locations:   locations,
		orders:      orders,
		compensator: compensator,
		lg:          lg,
		now:         time.Now,
	}
}

// CreateFromCart creates an order from the actor's cart.
//
// Ordering matters: the stock reservation is taken before any pricing work,
// and every failure after it succeeds releases the reservation before the
// error is returned. The cart is cleared by id after commit, detached from
// the request; a clear failure is logged, never surfaced, since the order is
// already durable.
func (s *Service) CreateFromCart(ctx context.Context, req CreateFromCartRequest) (*Order, error) {
	var sellerID *string
	if req.SellerID != "" {
		sid := req.SellerID
		sellerID = &sid
	}

	crt, err := s.carts.GetCart(ctx, req.OwnerID, sellerID)
	if err != nil {
		return nil, errors.Wrap(err, "read cart")
	}
	if crt == nil || len(crt.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, cl := range crt.Lines {
		if cl.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: cl.ProductID}
		}
	}

	// Resolve who the order belongs to. A seller actor sells to the cart's
	// client; a client actor is both owner and client, with the assigned
	// seller looked up when none was pre-set (none found is not an error).
	clientID := req.ActorID
	if req.ActorRole == RoleSeller {
		clientID = crt.ClientID
		sid := req.ActorID
		sellerID = &sid
	} else if sellerID == nil {
		assigned, err := s.locations.AssignedSeller(ctx, clientID)
		switch {
		case err != nil:
			s.lg.Warn("assigned seller lookup failed, creating order without seller",
				zap.String("client_id", clientID), zap.Error(err))
		case assigned != "":
			sellerID = &assigned
		}
	}

	// Reserve stock first. Nothing has been persisted yet, so a failure
	// here needs no compensation.
	items := make([]inventory.Item, len(crt.Lines))
	for i, cl := range crt.Lines {
		items[i] = inventory.Item{ProductID: cl.ProductID, Quantity: cl.Quantity, Unit: cl.Unit}
	}
	reservationID, err := s.inventory.Reserve(ctx, items, uuid.New().String())
	if err != nil {
		return nil, &InsufficientStockError{Cause: err}
	}

	o, err := s.buildOrder(ctx, req, crt, clientID, sellerID, reservationID)
	if err != nil {
		s.compensator.Release(ctx, reservationID)
		return nil, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		s.compensator.Release(ctx, reservationID)
		return nil, errors.Wrap(err, "create order")
	}

	go s.clearCart(crt.ID)

	return o, nil
}

// buildOrder resolves prices, validates promotions, computes totals, and
// assembles the order graph. Any error it returns happens after the
// reservation succeeded; the caller compensates.
func (s *Service) buildOrder(
	ctx context.Context,
	req CreateFromCartRequest,
	crt *cart.Cart,
	clientID string,
	sellerID *string,
	reservationID string,
) (*Order, error) {
	orderID := uuid.New().String()

	lines := make([]Line, 0, len(crt.Lines))
	promos := make([]AppliedPromotion, 0)
	subtotal := decimal.Zero
	discount := decimal.Zero

	for _, cl := range crt.Lines {
		quote, err := s.resolvePrice(ctx, cl.ProductID, clientID)
		if err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(cl.Quantity))
		subtotal = subtotal.Add(quote.FinalPrice.Mul(qty))

		lineDiscount := quote.ListPrice.Sub(quote.FinalPrice)
		if lineDiscount.IsNegative() {
			lineDiscount = decimal.Zero
		}
		discount = discount.Add(lineDiscount.Mul(qty))

		ln := Line{
			ID:         uuid.New().String(),
			OrderID:    orderID,
			ProductID:  cl.ProductID,
			SKU:        cl.SKU,
			Name:       cl.Name,
			Quantity:   cl.Quantity,
			Unit:       cl.Unit,
			ListPrice:  quote.ListPrice,
			FinalPrice: quote.FinalPrice,
		}
		if quote.CampaignID != "" {
			cid := quote.CampaignID
			ln.PromotionID = &cid
			if lineDiscount.IsPositive() {
				reason := "promotion " + cid
				ln.DiscountReason = &reason
			}

			applied := lineDiscount.Mul(qty)
			// A promotion-tagged line with no realized discount is
			// suspicious: re-check it with the catalog. The discount is
			// inferred from the price snapshots, not re-derived from the
			// campaign, and a line with a real discount was already
			// validated when it entered the cart.
			if !applied.IsPositive() {
				valid, err := s.prices.RevalidatePromotion(ctx, cid, cl.ProductID)
				if err != nil {
					s.lg.Warn("promotion revalidation failed, trusting cart snapshot",
						zap.String("campaign_id", cid),
						zap.String("product_id", cl.ProductID),
						zap.Error(err))
				} else if !valid {
					return nil, &ExpiredPromotionError{CampaignID: cid, ProductID: cl.ProductID}
				}
			}
			promos = append(promos, AppliedPromotion{
				OrderID:       orderID,
				OrderLineID:   ln.ID,
				CampaignID:    cid,
				DiscountType:  quote.DiscountType,
				DiscountValue: quote.DiscountValue,
				AppliedAmount: applied,
			})
		}
		lines = append(lines, ln)
	}

	discount = discount.Add(req.OrderDiscount)
	tax := subtotal.Sub(discount).Mul(taxRate).Round(2)
	grand := subtotal.Sub(discount).Add(tax)

	now := s.now().UTC()
	o := &Order{
		ID:               orderID,
		ClientID:         clientID,
		SellerID:         sellerID,
		PaymentMethod:    req.PaymentMethod,
		DeliveryDate:     req.DeliveryDate,
		Origin:           req.Origin,
		Subtotal:         subtotal,
		DiscountTotal:    discount,
		TaxTotal:         tax,
		GrandTotal:       grand,
		DeliveryPoint:    s.resolveDelivery(ctx, req, clientID),
		Notes:            req.Notes,
		Status:           StatusPending,
		ReservationToken: &reservationID,
		CreatedAt:        now,
		UpdatedAt:        now,
		Lines:            lines,
		Promotions:       promos,
	}
	if req.BranchID != "" {
		bid := req.BranchID
		o.BranchID = &bid
	}
	return o, nil
}

// resolvePrice tries the best current promotion first, then falls back to
// the minimum of all active prices. Transport failures count the same as an
// unpriceable product: the creation aborts either way.
func (s *Service) resolvePrice(ctx context.Context, productID, clientID string) (*catalog.Quote, error) {
	quote, err := s.prices.BestPromotion(ctx, productID, clientID)
	if err != nil {
		return nil, &PricingUnavailableError{ProductID: productID, Cause: err}
	}
	if quote != nil {
		return quote, nil
	}

	prices, err := s.prices.AllPrices(ctx, productID)
	if err != nil {
		return nil, &PricingUnavailableError{ProductID: productID, Cause: err}
	}
	if len(prices) == 0 {
		return nil, &PricingUnavailableError{ProductID: productID}
	}

	min := prices[0]
	for _, p := range prices[1:] {
		if p.LessThan(min) {
			min = p
		}
	}
	return &catalog.Quote{ListPrice: min, FinalPrice: min}, nil
}

// resolveDelivery picks explicit coordinates, then branch location, then
// client location. An unresolvable location is not an error; the field is
// left unset.
func (s *Service) resolveDelivery(ctx context.Context, req CreateFromCartRequest, clientID string) *catalog.Point {
	if req.Delivery != nil {
		return req.Delivery
	}

	var (
		pt  *catalog.Point
		err error
	)
	if req.BranchID != "" {
		pt, err = s.locations.BranchLocation(ctx, req.BranchID)
	} else {
		pt, err = s.locations.ClientLocation(ctx, clientID)
	}
	if err != nil {
		s.lg.Debug("delivery location lookup failed, leaving unset", zap.Error(err))
		return nil
	}
	return pt
}

// clearCart clears the exact cart the order was built from, after commit.
func (s *Service) clearCart(cartID string) {
	ctx, cancel := context.WithTimeout(context.Background(), clearCartTimeout)
	defer cancel()

	if err := s.carts.ClearByID(ctx, cartID); err != nil {
		s.lg.Warn("cart clear failed after order commit",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
	}
}
