// Package handler exposes the order operations over a thin JSON HTTP
// surface. Authentication, request validation frameworks, and gateway
// concerns live outside this service.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/order"
)

// OrderCreator creates orders from carts.
type OrderCreator interface {
	CreateFromCart(ctx context.Context, req order.CreateFromCartRequest) (*order.Order, error)
}

// StatusChanger executes status transitions and cancellations.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, orderID string, next order.Status, actorID *string, comment string) (*order.Order, error)
	CancelOrder(ctx context.Context, orderID string, actorID *string, reason string) (*order.Order, error)
}

// OrderReader loads orders for the read endpoint.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*order.Order, error)
}

// Handler maps HTTP requests onto the order services.
type Handler struct {
	creator OrderCreator
	status  StatusChanger
	orders  OrderReader
}

// New constructs a Handler.
func New(creator OrderCreator, status StatusChanger, orders OrderReader) *Handler {
	return &Handler{creator: creator, status: status, orders: orders}
}

// Register mounts all order routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /orders/{id}/status", h.changeStatus)
	mux.HandleFunc("POST /orders/{id}/cancel", h.cancelOrder)
}

// errorBody is the JSON error response shape.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Best effort: the status code is already written.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

// writeDomainError maps domain errors to HTTP responses. Unknown errors are
// logged and answered with a bare 500 so internals do not leak.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, ok := statusFor(err)
	if !ok {
		zctx.From(r.Context()).Error("order operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
