package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/shared"
)

type mockOrder struct {
	gatewayID string
	status    string
	amount    string
	txnID     string
}

// MockGateway keeps orders in memory and answers the way the hosted gateway would.
// Repeating CreateOrder with the same order id returns the existing order.
type MockGateway struct {
	mu      sync.RWMutex
	baseURL string
	orders  map[string]*mockOrder
}

func NewMockGateway(baseURL string) *MockGateway {
	return &MockGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		orders:  make(map[string]*mockOrder),
	}
}

func (m *MockGateway) CreateOrder(_ context.Context, req shared.CreateOrderRequest) (*shared.OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := req.OrderID.String()
	if o, ok := m.orders[id]; ok {
		return &shared.OrderResult{GatewayOrderID: o.gatewayID, Status: o.status}, nil
	}
	o := &mockOrder{
		gatewayID: "mock_" + id,
		status:    "NEW",
		amount:    req.Amount.Decimal(),
	}
	m.orders[id] = o
	return &shared.OrderResult{GatewayOrderID: o.gatewayID, Status: o.status}, nil
}

func (m *MockGateway) CreatePaymentSession(_ context.Context, req shared.CreateSessionRequest) (*shared.SessionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id := req.OrderID.String()
	if _, ok := m.orders[id]; !ok {
		return nil, errs.Mark(errs.Newf("order %s not created", id), shared.ErrGatewayOrderNotFound)
	}
	return &shared.SessionResult{
		SessionID:  "mock_sess_" + id,
		PaymentURL: m.baseURL + "/mock/pay/" + id,
	}, nil
}

func (m *MockGateway) GetOrderStatus(_ context.Context, orderID booking.OrderID) (*shared.OrderStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id := orderID.String()
	o, ok := m.orders[id]
	if !ok {
		return nil, errs.Mark(errs.Newf("order %s not found", id), shared.ErrGatewayOrderNotFound)
	}
	raw, err := json.Marshal(map[string]string{
		"id":       o.gatewayID,
		"order_id": id,
		"status":   o.status,
		"txn_id":   o.txnID,
		"amount":   o.amount,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode mock status")
	}
	return &shared.OrderStatus{
		OrderID:       id,
		Status:        o.status,
		TransactionID: o.txnID,
		Amount:        o.amount,
		Raw:           raw,
	}, nil
}

// SetStatus moves a known order to status, as if the payer had acted on the payment page.
func (m *MockGateway) SetStatus(orderID booking.OrderID, status string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID.String()]
	if !ok {
		return false
	}
	o.status = status
	if o.txnID == "" && status == "CHARGED" {
		o.txnID = "mock_txn_" + orderID.String()
	}
	return true
}
