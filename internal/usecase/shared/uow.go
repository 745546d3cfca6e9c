package shared

//go:generate mockgen -source=uow.go -destination=../../testutil/mock/shared/uow_mock.go -package=sharedmock

import (
	"context"
	"encoding/json"
	"time"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/domain/slot"
	"mentor-booking/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: ReadCommitted write transaction, retried on serialization failure and deadlock
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for consistent multi-table reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: single statements on the pool
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: lookups outside any transaction
	CommandReads() CommandReads
}

// Tx exposes repositories bound to one open transaction.
type Tx interface {
	Slots() SlotRepository
	Bookings() BookingRepository
	Idempotency() IdempotencyRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

type SlotRepository interface {
	// LockForClaim reads the requested slots with row locks, in id order. Missing ids are simply absent.
	LockForClaim(ctx context.Context, ids []uuid.UUID) ([]*slot.Slot, error)
	// Claim flips is_booked on every still-available slot and returns the affected row count.
	Claim(ctx context.Context, mentorID uuid.UUID, ids []uuid.UUID) (int64, error)
	// ConfirmBooked ensures the slots are booked; already-booked rows count as confirmed.
	ConfirmBooked(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// SettlementUpdate is one callback's write. A nil State leaves statuses untouched;
// a nil Payload skips the audit merge.
type SettlementUpdate struct {
	State         *booking.State
	GatewayStatus *string
	Payload       json.RawMessage
	At            time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// LockByOrderID loads the booking with a row lock for the rest of the transaction.
	LockByOrderID(ctx context.Context, orderID booking.OrderID) (*booking.Booking, error)
	ApplySettlement(ctx context.Context, id uuid.UUID, u SettlementUpdate) error
	RecordGatewayOrder(ctx context.Context, id uuid.UUID, gatewayOrderID, status string, at time.Time) error
	SetMeetingLink(ctx context.Context, id uuid.UUID, link string, at time.Time) error
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]booking.OrderID, error)
}

type IdempotencyRepository interface {
	// TryInsert records a processing key and reports whether this call owns it.
	// An existing unexpired key is left alone; an expired one is reclaimed.
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	Complete(ctx context.Context, key, userID, bookingID uuid.UUID) error
	Release(ctx context.Context, key, userID uuid.UUID) error
}
