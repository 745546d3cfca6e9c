package shared

//go:generate mockgen -source=events.go -destination=../../testutil/mock/shared/events_mock.go -package=sharedmock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingPaymentFailed = "booking.payment_failed"
)

type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     uuid.UUID `json:"booking_id"`
	OrderID       string    `json:"order_id"`
	PayerID       uuid.UUID `json:"payer_id"`
	MentorID      uuid.UUID `json:"mentor_id"`
	PaymentStatus string    `json:"payment_status"`
	BookingStatus string    `json:"booking_status"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}
