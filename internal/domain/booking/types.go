package booking

import "errors"

var (
	ErrInvalidBookingStatus = errors.New("invalid booking status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRejected  BookingStatus = "rejected"
)

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingRejected:
		return true
	default:
		return false
	}
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidBookingStatus
	}
	return status, nil
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidPaymentStatus
	}
	return status, nil
}

// State is the (payment, booking) pair the settlement state machine moves between.
type State struct {
	Payment PaymentStatus
	Booking BookingStatus
}

var (
	StatePending   = State{Payment: PaymentPending, Booking: BookingPending}
	StateConfirmed = State{Payment: PaymentPaid, Booking: BookingConfirmed}
	StateFailed    = State{Payment: PaymentFailed, Booking: BookingCancelled}
	StateRefunded  = State{Payment: PaymentRefunded, Booking: BookingCancelled}
)

// IsSettleable is true only for pending/pending; every other pair has left the payment window.
func (s State) IsSettleable() bool {
	return s == StatePending
}

// Outcome is what a gateway signal means for a booking, independent of its current state.
type Outcome int

const (
	// OutcomeNone carries no state change (pending, new, or unrecognised signals).
	OutcomeNone Outcome = iota
	OutcomePaid
	OutcomeFailed
	OutcomeRefunded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePaid:
		return "paid"
	case OutcomeFailed:
		return "failed"
	case OutcomeRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

func (o Outcome) target() (State, bool) {
	switch o {
	case OutcomePaid:
		return StateConfirmed, true
	case OutcomeFailed:
		return StateFailed, true
	case OutcomeRefunded:
		return StateRefunded, true
	case OutcomeNone:
		return State{}, false
	default:
		return State{}, false
	}
}

type TransitionKind string

const (
	// TransitionApplied moved the booking to a new state.
	TransitionApplied TransitionKind = "applied"
	// TransitionReplay is a redelivery of the signal that produced the current state.
	TransitionReplay TransitionKind = "replay"
	// TransitionInformational is a non-terminal signal on a still-pending booking.
	TransitionInformational TransitionKind = "informational"
	// TransitionIgnored is a late or out-of-order signal that would revert or skip a state.
	TransitionIgnored TransitionKind = "ignored"
)

type Transition struct {
	Kind TransitionKind
	From State
	To   State
}

func (t Transition) Changed() bool {
	return t.Kind == TransitionApplied
}

// Confirmed reports a fresh move into confirmed, the only trigger for side effects.
func (t Transition) Confirmed() bool {
	return t.Changed() && t.To.Booking == BookingConfirmed
}

func allowed(from, to State) bool {
	switch {
	case from == StatePending && to == StateConfirmed:
		return true
	case from == StatePending && to == StateFailed:
		return true
	case from == StateConfirmed && to == StateRefunded:
		return true
	default:
		return false
	}
}
