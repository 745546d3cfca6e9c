//go:build unit || e2e

package builder

import (
	"time"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/domain/slot"
	reqdto "mentor-booking/internal/handler/dto/request"
	"mentor-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID             uuid.UUID
	PayerID        uuid.UUID
	MentorID       uuid.UUID
	SlotIDs        []uuid.UUID
	AmountCents    int64
	Currency       string
	State          booking.State
	OrderID        string
	GatewayOrderID *string
	GatewayStatus  *string
	MeetingLink    *string
	SessionStart   time.Time
	SessionEnd     time.Time
	CreatedAt      time.Time
}

func NewBookingBuilder() *BookingBuilder {
	start := time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:           uuid.New(),
		PayerID:      uuid.New(),
		MentorID:     uuid.New(),
		SlotIDs:      []uuid.UUID{uuid.New()},
		AmountCents:  150000,
		Currency:     "INR",
		State:        booking.StatePending,
		OrderID:      "MB261016101500ABC123",
		SessionStart: start,
		SessionEnd:   start.Add(time.Hour),
		CreatedAt:    time.Date(2026, 10, 16, 10, 15, 0, 0, time.UTC),
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) InState(s booking.State) *BookingBuilder {
	b.State = s
	return b
}

func (b *BookingBuilder) WithSlots(slots ...*slot.Slot) *BookingBuilder {
	b.SlotIDs = make([]uuid.UUID, len(slots))
	for i, s := range slots {
		b.SlotIDs[i] = s.ID()
	}
	if len(slots) > 0 {
		b.MentorID = slots[0].MentorID()
	}
	return b
}

func (b *BookingBuilder) BuildDomain() *booking.Booking {
	bk, err := booking.Reconstruct(booking.ReconstructParams{
		ID:             b.ID,
		PayerID:        b.PayerID,
		MentorID:       b.MentorID,
		SlotIDs:        b.SlotIDs,
		AmountCents:    b.AmountCents,
		Currency:       b.Currency,
		BookingStatus:  b.State.Booking.String(),
		PaymentStatus:  b.State.Payment.String(),
		OrderID:        b.OrderID,
		GatewayOrderID: b.GatewayOrderID,
		GatewayStatus:  b.GatewayStatus,
		MeetingLink:    b.MeetingLink,
		SessionStart:   b.SessionStart,
		SessionEnd:     b.SessionEnd,
		Metadata:       map[string]string{},
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.CreatedAt,
	})
	if err != nil {
		panic(err)
	}
	return bk
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	slots := make([]queries.BookingSlotView, len(b.SlotIDs))
	for i, id := range b.SlotIDs {
		start := b.SessionStart.Add(time.Duration(i) * time.Hour)
		slots[i] = queries.BookingSlotView{
			ID:         id,
			Date:       time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
			StartTime:  start.Format("15:04"),
			EndTime:    start.Add(time.Hour).Format("15:04"),
			PriceCents: b.AmountCents / int64(len(b.SlotIDs)),
		}
	}
	return &queries.BookingView{
		ID:             b.ID,
		PayerID:        b.PayerID,
		MentorID:       b.MentorID,
		MentorName:     "Asha Mentor",
		AmountCents:    b.AmountCents,
		Currency:       b.Currency,
		BookingStatus:  b.State.Booking.String(),
		PaymentStatus:  b.State.Payment.String(),
		OrderID:        b.OrderID,
		GatewayOrderID: b.GatewayOrderID,
		GatewayStatus:  b.GatewayStatus,
		MeetingLink:    b.MeetingLink,
		SessionStart:   b.SessionStart,
		SessionEnd:     b.SessionEnd,
		Slots:          slots,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.CreatedAt,
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	amount := b.AmountCents
	return reqdto.CreateBookingRequest{
		MentorID:    b.MentorID,
		SlotIDs:     b.SlotIDs,
		AmountCents: &amount,
	}
}
