package listener

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/order"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/warehouse"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID map[string]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, next order.Status, _ *order.StatusHistory) error {
	if o, ok := m.byID[id]; ok {
		o.Status = next
	}
	return nil
}

type statusCall struct {
	orderID string
	next    order.Status
	comment string
}

type mockStatusChanger struct {
	calls []statusCall
	err   error
}

func (m *mockStatusChanger) ChangeStatus(_ context.Context, orderID string, next order.Status, _ *string, comment string) (*order.Order, error) {
	m.calls = append(m.calls, statusCall{orderID: orderID, next: next, comment: comment})
	if m.err != nil {
		return nil, m.err
	}
	return &order.Order{ID: orderID, Status: next}, nil
}

type pickingCall struct {
	orderID       string
	reservationID *string
}

type mockWarehouse struct {
	pickings   map[string]*warehouse.Picking
	getErr     error
	confirms   []pickingCall
	confirmErr error
}

func (m *mockWarehouse) ConfirmPicking(_ context.Context, orderID string, reservationID *string) error {
	m.confirms = append(m.confirms, pickingCall{orderID: orderID, reservationID: reservationID})
	return m.confirmErr
}

func (m *mockWarehouse) GetPicking(_ context.Context, pickingID string) (*warehouse.Picking, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.pickings[pickingID]
	if !ok {
		return nil, warehouse.ErrPickingNotFound
	}
	return p, nil
}

// --- Helpers ---

func newHandlersEnv() (*Handlers, *mockOrderRepo, *mockStatusChanger, *mockWarehouse) {
	repo := &mockOrderRepo{byID: map[string]*order.Order{}}
	status := &mockStatusChanger{}
	wh := &mockWarehouse{pickings: map[string]*warehouse.Picking{}}
	h := NewHandlers(repo, status, wh, zap.NewNop())
	return h, repo, status, wh
}

// --- Tests ---

func TestOrderApproved_ConfirmsPicking(t *testing.T) {
	h, repo, _, wh := newHandlersEnv()
	token := "res-1"
	repo.byID["o1"] = &order.Order{ID: "o1", Status: order.StatusApproved, ReservationToken: &token}

	require.NoError(t, h.OrderApproved(context.Background(), "o1"))

	require.Len(t, wh.confirms, 1)
	assert.Equal(t, "o1", wh.confirms[0].orderID)
	require.NotNil(t, wh.confirms[0].reservationID)
	assert.Equal(t, "res-1", *wh.confirms[0].reservationID)
}

func TestOrderApproved_UnknownOrder(t *testing.T) {
	h, _, _, wh := newHandlersEnv()

	err := h.OrderApproved(context.Background(), "missing")

	require.ErrorIs(t, err, order.ErrNotFound)
	assert.Empty(t, wh.confirms)
}

func TestOrderApproved_ConfirmFailureIsSwallowed(t *testing.T) {
	h, repo, _, wh := newHandlersEnv()
	repo.byID["o1"] = &order.Order{ID: "o1", Status: order.StatusApproved}
	wh.confirmErr = errors.New("warehouse down")

	require.NoError(t, h.OrderApproved(context.Background(), "o1"),
		"a warehouse outage must not fail the handler, the approval already committed")
}

func TestPickingCompleted_MarksPrepared(t *testing.T) {
	h, _, status, wh := newHandlersEnv()
	wh.pickings["p1"] = &warehouse.Picking{ID: "p1", OrderID: "o1"}

	require.NoError(t, h.PickingCompleted(context.Background(), "p1"))

	require.Len(t, status.calls, 1)
	assert.Equal(t, "o1", status.calls[0].orderID)
	assert.Equal(t, order.StatusPrepared, status.calls[0].next)
	assert.Equal(t, "picking completed", status.calls[0].comment)
}

func TestPickingCompleted_UnknownPicking(t *testing.T) {
	h, _, status, _ := newHandlersEnv()

	require.NoError(t, h.PickingCompleted(context.Background(), "missing"),
		"an unknown picking is dropped, not retried")
	assert.Empty(t, status.calls)
}

func TestPickingCompleted_PickingWithoutOrder(t *testing.T) {
	h, _, status, wh := newHandlersEnv()
	wh.pickings["p1"] = &warehouse.Picking{ID: "p1"}

	require.NoError(t, h.PickingCompleted(context.Background(), "p1"))
	assert.Empty(t, status.calls)
}

func TestPickingCompleted_LookupFailure(t *testing.T) {
	h, _, status, wh := newHandlersEnv()
	wh.getErr = errors.New("warehouse down")

	err := h.PickingCompleted(context.Background(), "p1")

	require.Error(t, err)
	assert.Empty(t, status.calls)
}

func TestPickingCompleted_StatusChangeFailure(t *testing.T) {
	h, _, status, wh := newHandlersEnv()
	wh.pickings["p1"] = &warehouse.Picking{ID: "p1", OrderID: "o1"}
	status.err = errors.New("db write failed")

	require.Error(t, h.PickingCompleted(context.Background(), "p1"))
}

func TestRegister_CoversAllChannels(t *testing.T) {
	h, _, _, _ := newHandlersEnv()
	l := New(Config{DatabaseURL: "postgres://localhost/ignored"}, zap.NewNop())

	h.Register(l)

	for _, ch := range []string{ChannelOrderCreated, ChannelOrderApproved, ChannelOrderDelivered, ChannelPickingCompleted} {
		assert.Contains(t, l.handlers, ch)
	}
}
