package repository

import (
	"context"
	"encoding/json"
	"time"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/infra"
	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/pgconv"
	"mentor-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertBookingSQL = `
INSERT INTO bookings (
    id, payer_id, mentor_id, amount_cents, currency,
    booking_status, payment_status, order_id,
    session_start, session_end, metadata, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::text::jsonb, $12, $12)`

const insertBookingSlotsSQL = `
INSERT INTO booking_slots (booking_id, slot_id, position)
SELECT $1::uuid, s.slot_id, s.ord
FROM unnest($2::uuid[]) WITH ORDINALITY AS s(slot_id, ord)`

const selectBookingColumns = `
SELECT b.id, b.payer_id, b.mentor_id, b.amount_cents, b.currency,
       b.booking_status, b.payment_status, b.order_id,
       b.gateway_order_id, b.gateway_status, b.meeting_link,
       b.session_start, b.session_end, b.metadata, b.created_at, b.updated_at,
       COALESCE((SELECT array_agg(bs.slot_id ORDER BY bs.position)
                 FROM booking_slots bs WHERE bs.booking_id = b.id), '{}') AS slot_ids
FROM bookings b`

const findBookingByIDSQL = selectBookingColumns + `
WHERE b.id = $1`

const lockBookingByOrderIDSQL = selectBookingColumns + `
WHERE b.order_id = $1
FOR UPDATE OF b`

// The audit merge runs in SQL under the row lock: top-level keys from the newest
// payload overwrite, keys it does not carry survive.
const applySettlementSQL = `
UPDATE bookings SET
    payment_status  = COALESCE($2, payment_status),
    booking_status  = COALESCE($3, booking_status),
    gateway_status  = COALESCE($4, gateway_status),
    gateway_payload = CASE
        WHEN $5::text IS NULL THEN gateway_payload
        ELSE COALESCE(gateway_payload, '{}'::jsonb) || ($5::text)::jsonb
    END,
    updated_at      = $6
WHERE id = $1`

// Gateway bookkeeping never overrides a state a callback already settled.
const recordGatewayOrderSQL = `
UPDATE bookings SET
    gateway_order_id = COALESCE($2, gateway_order_id),
    gateway_status   = COALESCE($3, gateway_status),
    updated_at       = $4
WHERE id = $1
  AND payment_status = 'pending'
  AND booking_status = 'pending'`

const setMeetingLinkSQL = `
UPDATE bookings SET meeting_link = $2, updated_at = $3
WHERE id = $1`

const listStalePendingSQL = `
SELECT order_id
FROM bookings
WHERE payment_status = 'pending'
  AND booking_status = 'pending'
  AND created_at < $1
ORDER BY created_at
LIMIT $2`

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	metadata, err := json.Marshal(b.Metadata())
	if err != nil {
		return infra.WrapRepoErr("failed to encode booking metadata", err)
	}

	_, err = r.db.Exec(ctx, insertBookingSQL,
		pgconv.UUIDToPgtype(b.ID()),
		pgconv.UUIDToPgtype(b.PayerID()),
		pgconv.UUIDToPgtype(b.MentorID()),
		b.Amount().Cents(),
		b.Amount().Currency(),
		b.BookingStatus().String(),
		b.PaymentStatus().String(),
		b.OrderID().String(),
		pgconv.TimeToPgtype(b.SessionStart()),
		pgconv.TimeToPgtype(b.SessionEnd()),
		string(metadata),
		pgconv.TimeToPgtype(b.CreatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}

	_, err = r.db.Exec(ctx, insertBookingSlotsSQL,
		pgconv.UUIDToPgtype(b.ID()),
		pgconv.UUIDsToPgtype(b.SlotIDs()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to link booking slots", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, findBookingByIDSQL, pgconv.UUIDToPgtype(id)))
}

func (r *BookingRepository) LockByOrderID(ctx context.Context, orderID booking.OrderID) (*booking.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, lockBookingByOrderIDSQL, orderID.String()))
}

func (r *BookingRepository) ApplySettlement(ctx context.Context, id uuid.UUID, u shared.SettlementUpdate) error {
	var paymentStatus, bookingStatus pgtype.Text
	if u.State != nil {
		paymentStatus = pgconv.StringToPgtype(u.State.Payment.String())
		bookingStatus = pgconv.StringToPgtype(u.State.Booking.String())
	}
	var payload pgtype.Text
	if len(u.Payload) > 0 {
		payload = pgconv.StringToPgtype(string(u.Payload))
	}

	tag, err := r.db.Exec(ctx, applySettlementSQL,
		pgconv.UUIDToPgtype(id),
		paymentStatus,
		bookingStatus,
		pgconv.StringPtrToPgtype(u.GatewayStatus),
		payload,
		pgconv.TimeToPgtype(u.At),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to apply settlement", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewNotFound("booking not found")
	}
	return nil
}

func (r *BookingRepository) RecordGatewayOrder(ctx context.Context, id uuid.UUID, gatewayOrderID, status string, at time.Time) error {
	_, err := r.db.Exec(ctx, recordGatewayOrderSQL,
		pgconv.UUIDToPgtype(id),
		pgconv.EmptyToNullText(gatewayOrderID),
		pgconv.EmptyToNullText(status),
		pgconv.TimeToPgtype(at),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record gateway order", err)
	}
	return nil
}

func (r *BookingRepository) SetMeetingLink(ctx context.Context, id uuid.UUID, link string, at time.Time) error {
	tag, err := r.db.Exec(ctx, setMeetingLinkSQL, pgconv.UUIDToPgtype(id), link, pgconv.TimeToPgtype(at))
	if err != nil {
		return infra.WrapRepoErr("failed to set meeting link", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewNotFound("booking not found")
	}
	return nil
}

func (r *BookingRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]booking.OrderID, error) {
	rows, err := r.db.Query(ctx, listStalePendingSQL, pgconv.TimeToPgtype(createdBefore), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list stale bookings", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan stale bookings", err)
	}

	out := make([]booking.OrderID, len(ids))
	for i, id := range ids {
		out[i] = booking.OrderID(id)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, payerID, mentorID         pgtype.UUID
		amount                        int64
		currency                      string
		bookingStatus, paymentStatus  string
		orderID                       string
		gatewayOrderID, gatewayStatus pgtype.Text
		meetingLink                   pgtype.Text
		sessionStart, sessionEnd      pgtype.Timestamptz
		metadata                      map[string]string
		createdAt, updatedAt          pgtype.Timestamptz
		slotIDs                       []pgtype.UUID
	)
	err := row.Scan(
		&id, &payerID, &mentorID, &amount, &currency,
		&bookingStatus, &paymentStatus, &orderID,
		&gatewayOrderID, &gatewayStatus, &meetingLink,
		&sessionStart, &sessionEnd, &metadata, &createdAt, &updatedAt,
		&slotIDs,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewNotFound("booking not found")
		}
		return nil, infra.WrapRepoErr("failed to scan booking", err)
	}

	ids := make([]uuid.UUID, len(slotIDs))
	for i, s := range slotIDs {
		ids[i] = pgconv.UUIDFromPgtype(s)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	b, err := booking.Reconstruct(booking.ReconstructParams{
		ID:             pgconv.UUIDFromPgtype(id),
		PayerID:        pgconv.UUIDFromPgtype(payerID),
		MentorID:       pgconv.UUIDFromPgtype(mentorID),
		SlotIDs:        ids,
		AmountCents:    amount,
		Currency:       currency,
		BookingStatus:  bookingStatus,
		PaymentStatus:  paymentStatus,
		OrderID:        orderID,
		GatewayOrderID: pgconv.StringPtrFromPgtype(gatewayOrderID),
		GatewayStatus:  pgconv.StringPtrFromPgtype(gatewayStatus),
		MeetingLink:    pgconv.StringPtrFromPgtype(meetingLink),
		SessionStart:   pgconv.TimeFromPgtype(sessionStart),
		SessionEnd:     pgconv.TimeFromPgtype(sessionEnd),
		Metadata:       metadata,
		CreatedAt:      pgconv.TimeFromPgtype(createdAt),
		UpdatedAt:      pgconv.TimeFromPgtype(updatedAt),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("invalid booking row", err)
	}
	return b, nil
}
