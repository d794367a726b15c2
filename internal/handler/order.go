package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/catalog"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/order"
)

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createOrderRequest struct {
	ActorID       string     `json:"actorId"`
	ActorRole     string     `json:"actorRole"`
	OwnerID       string     `json:"ownerId"`
	SellerID      string     `json:"sellerId,omitempty"`
	BranchID      string     `json:"branchId,omitempty"`
	PaymentMethod string     `json:"paymentMethod"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`
	Origin        string     `json:"origin,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Delivery      *pointDTO  `json:"delivery,omitempty"`
	OrderDiscount float64    `json:"orderDiscount,omitempty"`
}

type changeStatusRequest struct {
	Status  string  `json:"status"`
	ActorID *string `json:"actorId,omitempty"`
	Comment string  `json:"comment,omitempty"`
}

type cancelOrderRequest struct {
	ActorID *string `json:"actorId,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

type orderLineDTO struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	SKU         string  `json:"sku,omitempty"`
	Name        string  `json:"name,omitempty"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	ListPrice   float64 `json:"listPrice"`
	FinalPrice  float64 `json:"finalPrice"`
	PromotionID *string `json:"promotionId,omitempty"`
}

type orderResponse struct {
	ID               string         `json:"id"`
	ClientID         string         `json:"clientId"`
	SellerID         *string        `json:"sellerId,omitempty"`
	BranchID         *string        `json:"branchId,omitempty"`
	PaymentMethod    string         `json:"paymentMethod"`
	DeliveryDate     *time.Time     `json:"deliveryDate,omitempty"`
	Status           string         `json:"status"`
	Subtotal         float64        `json:"subtotal"`
	DiscountTotal    float64        `json:"discountTotal"`
	TaxTotal         float64        `json:"taxTotal"`
	GrandTotal       float64        `json:"grandTotal"`
	Delivery         *pointDTO      `json:"delivery,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	ReservationToken *string        `json:"reservationToken,omitempty"`
	Lines            []orderLineDTO `json:"lines"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	domainReq := order.CreateFromCartRequest{
		ActorID:       req.ActorID,
		ActorRole:     order.Role(req.ActorRole),
		OwnerID:       req.OwnerID,
		SellerID:      req.SellerID,
		BranchID:      req.BranchID,
		PaymentMethod: req.PaymentMethod,
		DeliveryDate:  req.DeliveryDate,
		Origin:        req.Origin,
		Notes:         req.Notes,
		OrderDiscount: decimal.NewFromFloat(req.OrderDiscount).Round(2),
	}
	if req.Delivery != nil {
		domainReq.Delivery = &catalog.Point{Lat: req.Delivery.Lat, Lng: req.Delivery.Lng}
	}

	o, err := h.creator.CreateFromCart(r.Context(), domainReq)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.status.ChangeStatus(r.Context(), r.PathValue("id"), order.Status(req.Status), req.ActorID, req.Comment)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	o, err := h.status.CancelOrder(r.Context(), r.PathValue("id"), req.ActorID, req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// statusFor maps known domain errors to HTTP status codes.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest, true
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, order.ErrStatusConflict):
		return http.StatusConflict, true
	}

	var (
		invalidQty     *order.InvalidQuantityError
		noStock        *order.InsufficientStockError
		noPrice        *order.PricingUnavailableError
		expiredPromo   *order.ExpiredPromotionError
		illegal        *order.IllegalTransitionError
		notCancellable *order.NotCancellableError
	)
	switch {
	case errors.As(err, &invalidQty):
		return http.StatusUnprocessableEntity, true
	case errors.As(err, &noStock):
		return http.StatusConflict, true
	case errors.As(err, &noPrice):
		return http.StatusUnprocessableEntity, true
	case errors.As(err, &expiredPromo):
		return http.StatusUnprocessableEntity, true
	case errors.As(err, &illegal):
		return http.StatusConflict, true
	case errors.As(err, &notCancellable):
		return http.StatusConflict, true
	}
	return 0, false
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		ClientID:         o.ClientID,
		SellerID:         o.SellerID,
		BranchID:         o.BranchID,
		PaymentMethod:    o.PaymentMethod,
		DeliveryDate:     o.DeliveryDate,
		Status:           string(o.Status),
		Subtotal:         o.Subtotal.InexactFloat64(),
		DiscountTotal:    o.DiscountTotal.InexactFloat64(),
		TaxTotal:         o.TaxTotal.InexactFloat64(),
		GrandTotal:       o.GrandTotal.InexactFloat64(),
		Notes:            o.Notes,
		ReservationToken: o.ReservationToken,
		Lines:            make([]orderLineDTO, len(o.Lines)),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.DeliveryPoint != nil {
		resp.Delivery = &pointDTO{Lat: o.DeliveryPoint.Lat, Lng: o.DeliveryPoint.Lng}
	}
	for i, ln := range o.Lines {
		resp.Lines[i] = orderLineDTO{
			ID:          ln.ID,
			ProductID:   ln.ProductID,
			SKU:         ln.SKU,
			Name:        ln.Name,
			Quantity:    ln.Quantity,
			Unit:        ln.Unit,
			ListPrice:   ln.ListPrice.InexactFloat64(),
			FinalPrice:  ln.FinalPrice.InexactFloat64(),
			PromotionID: ln.PromotionID,
		}
	}
	return resp
}
