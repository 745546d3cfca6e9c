package payment

import (
	"strings"

	"mentor-booking/internal/domain/booking"
)

// Signal is a gateway status or event name, normalised to upper case.
type Signal string

func NewSignal(s string) Signal {
	return Signal(strings.ToUpper(strings.TrimSpace(s)))
}

func (s Signal) String() string {
	return string(s)
}

type signalClass int

const (
	classUnknown signalClass = iota
	classSuccess
	classFailure
	classCancel
	classRefund
	classPending
)

var signalClasses = map[Signal]signalClass{
	"ORDER_SUCCEEDED": classSuccess,
	"CHARGED":         classSuccess,
	"SUCCESS":         classSuccess,

	"ORDER_FAILED":          classFailure,
	"FAILED":                classFailure,
	"AUTHORIZATION_FAILED":  classFailure,
	"AUTHENTICATION_FAILED": classFailure,
	"JUSPAY_DECLINED":       classFailure,

	"ORDER_CANCELLED": classCancel,
	"CANCEL":          classCancel,
	"CANCELLED":       classCancel,
	"CANCELED":        classCancel,

	"ORDER_REFUNDED": classRefund,
	"REFUNDED":       classRefund,
	"AUTO_REFUNDED":  classRefund,

	"PENDING":       classPending,
	"PENDING_VBV":   classPending,
	"NEW":           classPending,
	"ORDER_CREATED": classPending,
	"STARTED":       classPending,
	"AUTHORIZING":   classPending,
}

func (s Signal) class() signalClass {
	return signalClasses[s]
}

// Recognized is false for signals outside the known vocabulary. They are audited but never move state.
func (s Signal) Recognized() bool {
	return s.class() != classUnknown
}

// Outcome maps the signal onto the settlement state machine. Cancellation settles like a failure.
func (s Signal) Outcome() booking.Outcome {
	switch s.class() {
	case classSuccess:
		return booking.OutcomePaid
	case classFailure, classCancel:
		return booking.OutcomeFailed
	case classRefund:
		return booking.OutcomeRefunded
	case classPending, classUnknown:
		return booking.OutcomeNone
	default:
		return booking.OutcomeNone
	}
}
