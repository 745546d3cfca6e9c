package shared

//go:generate mockgen -source=gateway.go -destination=../../testutil/mock/shared/gateway_mock.go -package=sharedmock

import (
	"context"
	"encoding/json"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	// ErrGatewayUnavailable covers transport errors, timeouts and 5xx after retries.
	ErrGatewayUnavailable = errs.New("payment gateway unavailable")
	// ErrGatewayRejected is a definitive 4xx answer; retrying the same request will not help.
	ErrGatewayRejected      = errs.New("payment gateway rejected request")
	ErrGatewayOrderNotFound = errs.New("payment gateway order not found")
)

type Payer struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

type CreateOrderRequest struct {
	OrderID     booking.OrderID
	Amount      booking.Money
	Payer       Payer
	Beneficiary uuid.UUID
	Description string
}

type OrderResult struct {
	GatewayOrderID string
	Status         string
}

type CreateSessionRequest struct {
	OrderID booking.OrderID
	Amount  booking.Money
	Payer   Payer
}

type SessionResult struct {
	SessionID  string
	PaymentURL string
}

// OrderStatus is the gateway's current view of an order, as returned by a status query.
type OrderStatus struct {
	OrderID       string
	Status        string
	TransactionID string
	Amount        string
	Raw           json.RawMessage
}

// PaymentGateway is idempotent by OrderID: repeating a call with the same id never opens a second order.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)
	CreatePaymentSession(ctx context.Context, req CreateSessionRequest) (*SessionResult, error)
	GetOrderStatus(ctx context.Context, orderID booking.OrderID) (*OrderStatus, error)
}
