package commands

//go:generate mockgen -source=booking.go -destination=../../testutil/mock/commands/booking_mock.go -package=commandsmock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/domain/slot"
	"mentor-booking/internal/infra"
	"mentor-booking/internal/pkg/clock"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/pkg/obs"
	"mentor-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const createBookingEndpoint = "POST /api/bookings"

type CreateBookingInput struct {
	PayerID  uuid.UUID
	MentorID uuid.UUID
	SlotIDs  []uuid.UUID
	// ExpectedAmountCents is the total the client showed the payer; nil skips the guard.
	ExpectedAmountCents *int64
	Metadata            map[string]string
	IdempotencyKey      *uuid.UUID
}

type CreateBookingResult struct {
	Booking    *booking.Booking
	Payment    PaymentResult
	IsReplayed bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error)
	RetryPayment(ctx context.Context, payerID, bookingID uuid.UUID) (*PaymentResult, error)
}

type bookingCommandsImpl struct {
	uow      shared.UnitOfWork
	payments *paymentInitiator
	clock    clock.Clock
	entropy  io.Reader
	cfg      config.BookingConfig
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	parties shared.PartyDirectory,
	clk clock.Clock,
	entropy io.Reader,
	cfg config.BookingConfig,
) BookingCommands {
	return &bookingCommandsImpl{
		uow: uow,
		payments: &paymentInitiator{
			uow:     uow,
			gateway: gateway,
			parties: parties,
			clock:   clk,
		},
		clock:   clk,
		entropy: entropy,
		cfg:     cfg,
	}
}

func (c *bookingCommandsImpl) CreateBooking(ctx context.Context, in CreateBookingInput) (_ *CreateBookingResult, err error) {
	ctx, span := obs.StartSpan(ctx, "booking.create")
	span.SetAttributes(
		attribute.String("booking.mentor_id", in.MentorID.String()),
		attribute.Int("booking.slot_count", len(in.SlotIDs)),
	)
	defer func() { obs.EndSpan(span, err) }()

	if err := slot.ValidateRequest(in.MentorID, in.SlotIDs); err != nil {
		return nil, errs.Mark(err, ErrInvalidBookingRequest)
	}
	if in.PayerID == uuid.Nil {
		return nil, errs.Mark(booking.ErrPayerRequired, ErrInvalidBookingRequest)
	}
	if in.PayerID == in.MentorID {
		return nil, errs.Mark(booking.ErrSelfBooking, ErrInvalidBookingRequest)
	}

	if in.IdempotencyKey != nil {
		replayed, err := c.checkIdempotency(ctx, in)
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			return replayed, nil
		}
	}

	b, err := c.reserve(ctx, in)
	if err != nil {
		if in.IdempotencyKey != nil {
			c.releaseKey(ctx, *in.IdempotencyKey, in.PayerID)
		}
		return nil, err
	}

	slog.Info("booking created",
		"booking_id", b.ID(),
		"order_id", b.OrderID(),
		"mentor_id", b.MentorID(),
		"slot_count", len(b.SlotIDs()),
		"amount", b.Amount().String())

	return &CreateBookingResult{
		Booking: b,
		Payment: c.payments.initiate(ctx, b),
	}, nil
}

// reserve claims every slot and writes the pending booking in one transaction.
// The order id is minted first so any later gateway retry reuses it.
func (c *bookingCommandsImpl) reserve(ctx context.Context, in CreateBookingInput) (*booking.Booking, error) {
	orderID, err := booking.NewOrderID(c.clock.Now(), c.entropy)
	if err != nil {
		return nil, errs.Wrap(err, "failed to generate order id")
	}

	var created *booking.Booking
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locked, err := tx.Slots().LockForClaim(ctx, in.SlotIDs)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if err := slot.CheckClaimable(in.MentorID, in.SlotIDs, locked); err != nil {
			return err
		}

		affected, err := tx.Slots().Claim(ctx, in.MentorID, in.SlotIDs)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if affected != int64(len(in.SlotIDs)) {
			slog.Warn("slot claim lost a race",
				"mentor_id", in.MentorID,
				"requested", len(in.SlotIDs),
				"claimed", affected)
			return slot.RaceConflict(in.SlotIDs)
		}
		for _, s := range locked {
			s.MarkBooked()
		}

		b, err := booking.NewPendingBooking(booking.NewBookingParams{
			PayerID:             in.PayerID,
			MentorID:            in.MentorID,
			Slots:               locked,
			OrderID:             orderID,
			Currency:            c.cfg.Currency,
			ExpectedAmountCents: in.ExpectedAmountCents,
			Metadata:            in.Metadata,
			Location:            c.cfg.Location(),
			Now:                 c.clock.Now(),
		})
		if err != nil {
			return errs.Mark(err, ErrInvalidBookingRequest)
		}

		if err := tx.Bookings().Create(ctx, b); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				constraint := infra.ViolatedConstraint(err)
				if constraint == infra.ConstraintSlotBooked {
					// another booking already references one of these slots
					return slot.RaceConflict(in.SlotIDs)
				}
				slog.Error("booking insert violated a unique constraint",
					"order_id", orderID,
					"constraint", constraint)
			}
			return errs.Mark(err, ErrDatabaseOperation)
		}

		if in.IdempotencyKey != nil {
			if err := tx.Idempotency().Complete(ctx, *in.IdempotencyKey, in.PayerID, b.ID()); err != nil {
				return errs.Mark(err, ErrDatabaseOperation)
			}
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// checkIdempotency returns a replayed result when the key already completed for the same request.
func (c *bookingCommandsImpl) checkIdempotency(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	key := *in.IdempotencyKey
	hash := requestHash(in)

	var (
		owned    bool
		existing *shared.IdempotencyRecord
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		owned, err = tx.Idempotency().TryInsert(ctx, key, in.PayerID, createBookingEndpoint, hash, c.clock.Now().Add(c.cfg.IdempotencyTTL))
		if err != nil || owned {
			return err
		}
		existing, err = tx.Reads().IdempotencyByKey(ctx, key, in.PayerID)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	if owned {
		return nil, nil
	}

	if existing.RequestHash != hash {
		return nil, ErrIdempotencyKeyReuse
	}
	switch existing.Status {
	case shared.IdempotencyProcessing:
		return nil, ErrIdempotencyInProgress
	case shared.IdempotencyCompleted:
		if existing.ResultBookingID == nil {
			return nil, errs.New("completed idempotency key missing booking id")
		}
		return c.replay(ctx, *existing.ResultBookingID)
	default:
		return nil, errs.Newf("invalid idempotency key status %q", existing.Status)
	}
}

func (c *bookingCommandsImpl) replay(ctx context.Context, bookingID uuid.UUID) (*CreateBookingResult, error) {
	b, err := c.uow.CommandReads().BookingByID(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	result := &CreateBookingResult{Booking: b, IsReplayed: true}
	if b.IsPayable() {
		// The first attempt may have died between commit and the gateway call.
		result.Payment = c.payments.initiate(ctx, b)
	} else {
		result.Payment = PaymentResult{Success: true}
		if s := b.GatewayOrderID(); s != nil {
			result.Payment.GatewayOrderID = *s
		}
		if s := b.GatewayStatus(); s != nil {
			result.Payment.GatewayStatus = *s
		}
	}
	return result, nil
}

func (c *bookingCommandsImpl) releaseKey(ctx context.Context, key, userID uuid.UUID) {
	err := c.uow.Within(context.WithoutCancel(ctx), func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Release(ctx, key, userID)
	})
	if err != nil {
		slog.Warn("failed to release idempotency key", "key", key, "error", err.Error())
	}
}

func (c *bookingCommandsImpl) RetryPayment(ctx context.Context, payerID, bookingID uuid.UUID) (_ *PaymentResult, err error) {
	ctx, span := obs.StartSpan(ctx, "booking.retry_payment")
	defer func() { obs.EndSpan(span, err) }()

	b, err := c.uow.CommandReads().BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	if b.PayerID() != payerID {
		return nil, ErrBookingAccessDenied
	}
	if !b.IsPayable() {
		return nil, ErrBookingNotPayable
	}

	result := c.payments.initiate(ctx, b)
	if !result.Success {
		return &result, errs.Mark(errors.New(result.Error), ErrGatewayFailure)
	}
	return &result, nil
}

// requestHash fingerprints the request independent of slot order.
func requestHash(in CreateBookingInput) string {
	ids := make([]string, len(in.SlotIDs))
	for i, id := range in.SlotIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)

	payload, _ := json.Marshal(struct {
		MentorID string            `json:"mentor_id"`
		SlotIDs  []string          `json:"slot_ids"`
		Amount   *int64            `json:"amount_cents,omitempty"`
		Metadata map[string]string `json:"metadata,omitempty"`
	}{
		MentorID: in.MentorID.String(),
		SlotIDs:  ids,
		Amount:   in.ExpectedAmountCents,
		Metadata: in.Metadata,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

