package booking

import (
	"errors"
	"time"

	"mentor-booking/internal/domain/slot"

	"github.com/google/uuid"
)

var (
	ErrPayerRequired   = errors.New("payer id is required")
	ErrSelfBooking     = errors.New("payer cannot book their own slots")
	ErrAmountMismatch  = errors.New("amount does not match slot prices")
	ErrOrderIDRequired = errors.New("order id is required")
)

type NewBookingParams struct {
	PayerID  uuid.UUID
	MentorID uuid.UUID
	Slots    []*slot.Slot
	OrderID  OrderID
	Currency string
	// ExpectedAmountCents is the total the client displayed; nil skips the check.
	ExpectedAmountCents *int64
	Metadata            map[string]string
	Location            *time.Location
	Now                 time.Time
}

type Booking struct {
	id             uuid.UUID
	payerID        uuid.UUID
	mentorID       uuid.UUID
	slotIDs        []uuid.UUID
	amount         Money
	state          State
	orderID        OrderID
	gatewayOrderID *string
	gatewayStatus  *string
	meetingLink    *string
	sessionStart   time.Time
	sessionEnd     time.Time
	metadata       map[string]string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewPendingBooking bundles already-claimed slots into one payable booking in pending/pending.
// Slot ids are kept in chronological order; the session spans first start to last end.
func NewPendingBooking(p NewBookingParams) (*Booking, error) {
	if p.PayerID == uuid.Nil {
		return nil, ErrPayerRequired
	}
	if p.PayerID == p.MentorID {
		return nil, ErrSelfBooking
	}
	if p.OrderID == "" {
		return nil, ErrOrderIDRequired
	}
	if len(p.Slots) == 0 {
		return nil, slot.ErrNoSlots
	}

	ordered := make([]*slot.Slot, len(p.Slots))
	copy(ordered, p.Slots)
	slot.SortChronologically(ordered)

	amount, err := NewMoney(slot.TotalPriceCents(ordered), p.Currency)
	if err != nil {
		return nil, err
	}
	if p.ExpectedAmountCents != nil && *p.ExpectedAmountCents != amount.Cents() {
		return nil, ErrAmountMismatch
	}

	ids := make([]uuid.UUID, len(ordered))
	for i, s := range ordered {
		ids[i] = s.ID()
	}

	metadata := make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		metadata[k] = v
	}

	return &Booking{
		id:           uuid.New(),
		payerID:      p.PayerID,
		mentorID:     p.MentorID,
		slotIDs:      ids,
		amount:       amount,
		state:        StatePending,
		orderID:      p.OrderID,
		sessionStart: ordered[0].StartsAt(p.Location),
		sessionEnd:   ordered[len(ordered)-1].EndsAt(p.Location),
		metadata:     metadata,
		createdAt:    p.Now,
		updatedAt:    p.Now,
	}, nil
}

type ReconstructParams struct {
	ID             uuid.UUID
	PayerID        uuid.UUID
	MentorID       uuid.UUID
	SlotIDs        []uuid.UUID
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
	Metadata       map[string]string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func Reconstruct(p ReconstructParams) (*Booking, error) {
	bs, err := ParseBookingStatus(p.BookingStatus)
	if err != nil {
		return nil, err
	}
	ps, err := ParsePaymentStatus(p.PaymentStatus)
	if err != nil {
		return nil, err
	}
	amount, err := NewMoney(p.AmountCents, p.Currency)
	if err != nil {
		return nil, err
	}
	if p.OrderID == "" {
		return nil, ErrOrderIDRequired
	}
	return &Booking{
		id:             p.ID,
		payerID:        p.PayerID,
		mentorID:       p.MentorID,
		slotIDs:        p.SlotIDs,
		amount:         amount,
		state:          State{Payment: ps, Booking: bs},
		orderID:        OrderID(p.OrderID),
		gatewayOrderID: p.GatewayOrderID,
		gatewayStatus:  p.GatewayStatus,
		meetingLink:    p.MeetingLink,
		sessionStart:   p.SessionStart,
		sessionEnd:     p.SessionEnd,
		metadata:       p.Metadata,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

// ApplyOutcome runs the settlement state machine. Only an applied transition mutates the booking.
func (b *Booking) ApplyOutcome(o Outcome, now time.Time) Transition {
	from := b.state

	to, terminal := o.target()
	if !terminal {
		if from.IsSettleable() {
			return Transition{Kind: TransitionInformational, From: from, To: from}
		}
		return Transition{Kind: TransitionIgnored, From: from, To: from}
	}

	if from == to {
		return Transition{Kind: TransitionReplay, From: from, To: from}
	}
	if !allowed(from, to) {
		return Transition{Kind: TransitionIgnored, From: from, To: from}
	}

	b.state = to
	b.updatedAt = now
	return Transition{Kind: TransitionApplied, From: from, To: to}
}

func (b *Booking) RecordGatewayOrder(gatewayOrderID, status string) {
	if gatewayOrderID != "" {
		b.gatewayOrderID = &gatewayOrderID
	}
	if status != "" {
		b.gatewayStatus = &status
	}
}

func (b *Booking) SetMeetingLink(link string) {
	b.meetingLink = &link
}

// IsPayable reports whether a payment session may still be opened against this booking.
func (b *Booking) IsPayable() bool {
	return b.state.IsSettleable()
}

func (b *Booking) ID() uuid.UUID {
	return b.id
}

func (b *Booking) PayerID() uuid.UUID {
	return b.payerID
}

func (b *Booking) MentorID() uuid.UUID {
	return b.mentorID
}

func (b *Booking) SlotIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.slotIDs))
	copy(ids, b.slotIDs)
	return ids
}

func (b *Booking) Amount() Money {
	return b.amount
}

func (b *Booking) State() State {
	return b.state
}

func (b *Booking) BookingStatus() BookingStatus {
	return b.state.Booking
}

func (b *Booking) PaymentStatus() PaymentStatus {
	return b.state.Payment
}

func (b *Booking) OrderID() OrderID {
	return b.orderID
}

func (b *Booking) GatewayOrderID() *string {
	return b.gatewayOrderID
}

func (b *Booking) GatewayStatus() *string {
	return b.gatewayStatus
}

func (b *Booking) MeetingLink() *string {
	return b.meetingLink
}

func (b *Booking) SessionStart() time.Time {
	return b.sessionStart
}

func (b *Booking) SessionEnd() time.Time {
	return b.sessionEnd
}

func (b *Booking) Metadata() map[string]string {
	return b.metadata
}

func (b *Booking) CreatedAt() time.Time {
	return b.createdAt
}

func (b *Booking) UpdatedAt() time.Time {
	return b.updatedAt
}
