package commands

//go:generate mockgen -source=settlement.go -destination=../../testutil/mock/commands/settlement_mock.go -package=commandsmock

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"time"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/domain/payment"
	"mentor-booking/internal/infra"
	"mentor-booking/internal/pkg/clock"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/pkg/obs"
	"mentor-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type ReconciliationResult struct {
	Success       bool
	BookingID     uuid.UUID
	OrderID       string
	PaymentStatus booking.PaymentStatus
	BookingStatus booking.BookingStatus
	Transition    booking.TransitionKind
}

type ReconcileSummary struct {
	Checked int
	Settled int
	Failed  int
	Results []ReconciliationResult
}

// ConfirmationDispatcher runs post-payment side effects. It must absorb its own failures.
type ConfirmationDispatcher interface {
	OnBookingConfirmed(ctx context.Context, b *booking.Booking)
}

type SettlementCommands interface {
	HandleCallback(ctx context.Context, rawPayload []byte) (*ReconciliationResult, error)
	ReconcileOrder(ctx context.Context, orderID booking.OrderID) (*ReconciliationResult, error)
	ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (*ReconcileSummary, error)
}

type settlementCommandsImpl struct {
	uow               shared.UnitOfWork
	gateway           shared.PaymentGateway
	dispatcher        ConfirmationDispatcher
	events            shared.EventPublisher
	clock             clock.Clock
	sideEffectTimeout time.Duration
}

func NewSettlementCommands(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	dispatcher ConfirmationDispatcher,
	events shared.EventPublisher,
	clk clock.Clock,
	sideEffectTimeout time.Duration,
) SettlementCommands {
	return &settlementCommandsImpl{
		uow:               uow,
		gateway:           gateway,
		dispatcher:        dispatcher,
		events:            events,
		clock:             clk,
		sideEffectTimeout: sideEffectTimeout,
	}
}

func (s *settlementCommandsImpl) HandleCallback(ctx context.Context, rawPayload []byte) (*ReconciliationResult, error) {
	n, err := payment.ParseNotification(rawPayload)
	if err != nil {
		slog.Warn("rejecting malformed payment callback", "error", err.Error(), "bytes", len(rawPayload))
		return nil, errs.Mark(err, ErrMalformedCallback)
	}
	return s.settle(ctx, n, "callback")
}

func (s *settlementCommandsImpl) ReconcileOrder(ctx context.Context, orderID booking.OrderID) (*ReconciliationResult, error) {
	st, err := s.gateway.GetOrderStatus(ctx, orderID)
	if err != nil {
		return nil, errs.Mark(err, ErrGatewayFailure)
	}

	raw := st.Raw
	if len(raw) == 0 {
		raw, err = json.Marshal(map[string]string{
			"order_id": st.OrderID,
			"status":   st.Status,
			"txn_id":   st.TransactionID,
			"amount":   st.Amount,
		})
		if err != nil {
			return nil, errs.Wrap(err, "failed to encode status query payload")
		}
	}

	return s.settle(ctx, payment.Notification{
		OrderID:       orderID.String(),
		Signal:        payment.NewSignal(st.Status),
		TransactionID: st.TransactionID,
		Amount:        payment.Amount(st.Amount),
		Raw:           raw,
	}, "status_query")
}

func (s *settlementCommandsImpl) ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (*ReconcileSummary, error) {
	var orderIDs []booking.OrderID
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		orderIDs, err = tx.Bookings().ListStalePending(ctx, s.clock.Now().Add(-olderThan), limit)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	summary := &ReconcileSummary{Checked: len(orderIDs)}
	for _, id := range orderIDs {
		res, err := s.ReconcileOrder(ctx, id)
		if err != nil {
			summary.Failed++
			slog.Warn("reconciliation failed", "order_id", id, "error", err.Error())
			continue
		}
		if res.Transition == booking.TransitionApplied {
			summary.Settled++
		}
		summary.Results = append(summary.Results, *res)
	}
	return summary, nil
}

// settle applies one gateway signal. Status, audit merge and slot confirmation commit together;
// side effects run only after the commit and only for a fresh move into confirmed.
func (s *settlementCommandsImpl) settle(ctx context.Context, n payment.Notification, source string) (_ *ReconciliationResult, err error) {
	ctx, span := obs.StartSpan(ctx, "settlement.apply")
	span.SetAttributes(
		attribute.String("payment.order_id", n.OrderID),
		attribute.String("payment.signal", n.Signal.String()),
		attribute.String("payment.source", source),
	)
	defer func() { obs.EndSpan(span, err) }()

	// An id this service could never have issued cannot match a booking.
	orderID, err := booking.ParseOrderID(n.OrderID)
	if err != nil {
		slog.Warn("payment signal for foreign order id", "order_id", n.OrderID, "source", source)
		return nil, errs.Mark(err, ErrBookingNotFound)
	}

	var (
		tr      booking.Transition
		settled *booking.Booking
	)
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByOrderID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperation)
		}

		if !n.Signal.Recognized() {
			slog.Warn("unrecognised gateway signal, auditing only",
				"booking_id", b.ID(),
				"order_id", orderID,
				"signal", n.Signal)
		}
		checkAmount(b, n)

		tr = b.ApplyOutcome(n.Signal.Outcome(), s.clock.Now())
		settled = b

		update := shared.SettlementUpdate{Payload: n.Raw, At: s.clock.Now()}
		switch tr.Kind {
		case booking.TransitionReplay:
			return nil
		case booking.TransitionIgnored:
			slog.Warn("ignoring out-of-order gateway signal",
				"booking_id", b.ID(),
				"order_id", orderID,
				"signal", n.Signal,
				"payment_status", tr.From.Payment,
				"booking_status", tr.From.Booking)
		case booking.TransitionInformational:
			update.GatewayStatus = signalPtr(n.Signal)
		case booking.TransitionApplied:
			update.State = &tr.To
			update.GatewayStatus = signalPtr(n.Signal)
		}

		if err := tx.Bookings().ApplySettlement(ctx, b.ID(), update); err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}

		if tr.Confirmed() {
			ids := b.SlotIDs()
			affected, err := tx.Slots().ConfirmBooked(ctx, ids)
			if err != nil {
				return errs.Mark(err, ErrDatabaseOperation)
			}
			if affected != int64(len(ids)) {
				return errs.Mark(errs.Newf("confirmed %d of %d slots", affected, len(ids)), ErrSettlementInconsistent)
			}
		}
		return nil
	})
	if err != nil {
		if errs.Is(err, ErrBookingNotFound) {
			slog.Warn("payment signal for unknown order", "order_id", orderID, "signal", n.Signal, "source", source)
		}
		return nil, err
	}

	slog.Info("payment signal reconciled",
		"booking_id", settled.ID(),
		"order_id", orderID,
		"signal", n.Signal,
		"source", source,
		"transition", tr.Kind,
		"payment_status", settled.PaymentStatus(),
		"booking_status", settled.BookingStatus())

	s.afterCommit(ctx, tr, settled)

	return &ReconciliationResult{
		Success:       true,
		BookingID:     settled.ID(),
		OrderID:       orderID.String(),
		PaymentStatus: settled.PaymentStatus(),
		BookingStatus: settled.BookingStatus(),
		Transition:    tr.Kind,
	}, nil
}

func (s *settlementCommandsImpl) afterCommit(ctx context.Context, tr booking.Transition, b *booking.Booking) {
	if !tr.Changed() {
		return
	}

	// The gateway's connection may drop once it has its answer; the payment is already committed.
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
	defer cancel()

	switch {
	case tr.Confirmed():
		s.dispatcher.OnBookingConfirmed(sctx, b)
	case tr.To == booking.StateFailed:
		if err := s.events.Publish(sctx, bookingEvent(shared.EventBookingPaymentFailed, b, s.clock.Now())); err != nil {
			slog.Warn("failed to publish booking event",
				"type", shared.EventBookingPaymentFailed,
				"booking_id", b.ID(),
				"error", err.Error())
		}
	}
}

func bookingEvent(typ string, b *booking.Booking, at time.Time) shared.BookingEvent {
	return shared.BookingEvent{
		Type:          typ,
		BookingID:     b.ID(),
		OrderID:       b.OrderID().String(),
		PayerID:       b.PayerID(),
		MentorID:      b.MentorID(),
		PaymentStatus: b.PaymentStatus().String(),
		BookingStatus: b.BookingStatus().String(),
		AmountCents:   b.Amount().Cents(),
		Currency:      b.Amount().Currency(),
		OccurredAt:    at,
	}
}

func signalPtr(sig payment.Signal) *string {
	if sig == "" {
		return nil
	}
	v := sig.String()
	return &v
}

// checkAmount logs when the gateway reports a different amount. The gateway stays authoritative.
func checkAmount(b *booking.Booking, n payment.Notification) {
	if n.Amount == "" {
		return
	}
	got, ok := new(big.Rat).SetString(string(n.Amount))
	if !ok {
		slog.Warn("unparseable amount in gateway signal", "booking_id", b.ID(), "amount", n.Amount)
		return
	}
	want := big.NewRat(b.Amount().Cents(), 100)
	if got.Cmp(want) != 0 {
		slog.Warn("gateway amount differs from booking amount",
			"booking_id", b.ID(),
			"order_id", b.OrderID(),
			"gateway_amount", n.Amount,
			"booking_amount", b.Amount().Decimal())
	}
}
