package commands

import (
	"context"
	"log/slog"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/pkg/clock"
	"mentor-booking/internal/pkg/obs"
	"mentor-booking/internal/usecase/shared"

	"go.opentelemetry.io/otel/attribute"
)

// PaymentResult is the outcome of opening a payment against a committed booking.
// A failed result never implies the booking was rolled back.
type PaymentResult struct {
	Success        bool
	GatewayOrderID string
	GatewayStatus  string
	SessionID      string
	PaymentURL     string
	Error          string
}

// paymentInitiator drives createOrder then createPaymentSession with the booking's stored order id.
type paymentInitiator struct {
	uow     shared.UnitOfWork
	gateway shared.PaymentGateway
	parties shared.PartyDirectory
	clock   clock.Clock
}

func (p *paymentInitiator) initiate(ctx context.Context, b *booking.Booking) (result PaymentResult) {
	ctx, span := obs.StartSpan(ctx, "booking.initiate_payment")
	span.SetAttributes(
		attribute.String("booking.id", b.ID().String()),
		attribute.String("booking.order_id", b.OrderID().String()),
	)
	defer func() {
		span.SetAttributes(attribute.Bool("payment.success", result.Success))
		span.End()
	}()

	payer := p.payer(ctx, b)

	order, err := p.gateway.CreateOrder(ctx, shared.CreateOrderRequest{
		OrderID:     b.OrderID(),
		Amount:      b.Amount(),
		Payer:       payer,
		Beneficiary: b.MentorID(),
		Description: "Mentorship session " + b.SessionStart().Format("2006-01-02 15:04"),
	})
	if err != nil {
		slog.Error("gateway order creation failed",
			"booking_id", b.ID(),
			"order_id", b.OrderID(),
			"error", err.Error())
		return PaymentResult{Error: err.Error()}
	}

	// The booking row is the source of truth; losing this bookkeeping only costs an audit column.
	if err := p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Bookings().RecordGatewayOrder(ctx, b.ID(), order.GatewayOrderID, order.Status, p.clock.Now())
	}); err != nil {
		slog.Warn("failed to record gateway order",
			"booking_id", b.ID(),
			"gateway_order_id", order.GatewayOrderID,
			"error", err.Error())
	}

	session, err := p.gateway.CreatePaymentSession(ctx, shared.CreateSessionRequest{
		OrderID: b.OrderID(),
		Amount:  b.Amount(),
		Payer:   payer,
	})
	if err != nil {
		slog.Error("gateway session creation failed",
			"booking_id", b.ID(),
			"order_id", b.OrderID(),
			"error", err.Error())
		return PaymentResult{
			GatewayOrderID: order.GatewayOrderID,
			GatewayStatus:  order.Status,
			Error:          err.Error(),
		}
	}

	return PaymentResult{
		Success:        true,
		GatewayOrderID: order.GatewayOrderID,
		GatewayStatus:  order.Status,
		SessionID:      session.SessionID,
		PaymentURL:     session.PaymentURL,
	}
}

func (p *paymentInitiator) payer(ctx context.Context, b *booking.Booking) shared.Payer {
	payer := shared.Payer{ID: b.PayerID()}
	party, err := p.parties.FindByID(ctx, b.PayerID())
	if err != nil {
		slog.Warn("payer contact unavailable, creating order without it",
			"booking_id", b.ID(),
			"payer_id", b.PayerID(),
			"error", err.Error())
		return payer
	}
	payer.Name = party.Name
	payer.Email = party.Email
	if party.Phone != nil {
		payer.Phone = *party.Phone
	}
	return payer
}
