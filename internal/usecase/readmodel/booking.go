package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type BookingRM struct {
	ID             uuid.UUID
	PayerID        uuid.UUID
	MentorID       uuid.UUID
	MentorName     string
	AmountCents    int64
	Currency       string
	BookingStatus  string
	PaymentStatus  string
	OrderID        string
	GatewayOrderID *string
	GatewayStatus  *string
	MeetingLink    *string
	SessionStart   time.Time
	SessionEnd     time.Time
	Slots          []BookingSlotRM
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type BookingSlotRM struct {
	ID         uuid.UUID
	Date       time.Time
	StartTime  string
	EndTime    string
	PriceCents int64
}
