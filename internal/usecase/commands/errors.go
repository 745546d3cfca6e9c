package commands

import "mentor-booking/internal/pkg/errs"

var (
	ErrInvalidBookingRequest  = errs.New("invalid booking request")
	ErrBookingNotFound        = errs.New("booking not found")
	ErrBookingAccessDenied    = errs.New("booking access denied")
	ErrBookingNotPayable      = errs.New("booking is no longer payable")
	ErrIdempotencyInProgress  = errs.New("idempotency in progress")
	ErrIdempotencyKeyReuse    = errs.New("idempotency key reused with a different request")
	ErrMalformedCallback      = errs.New("malformed payment callback")
	ErrGatewayFailure         = errs.New("payment gateway failure")
	ErrDatabaseOperation      = errs.New("database operation failed")
	ErrSettlementInconsistent = errs.New("booking slots missing during settlement")
)
