package readstore

import (
	"context"
	"fmt"
	"time"

	"mentor-booking/internal/infra"
	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/pgconv"
	"mentor-booking/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingViewSQL = `
SELECT b.id, b.payer_id, b.mentor_id, COALESCE(m.name, ''), b.amount_cents, b.currency,
       b.booking_status, b.payment_status, b.order_id,
       b.gateway_order_id, b.gateway_status, b.meeting_link,
       b.session_start, b.session_end, b.created_at, b.updated_at
FROM bookings b
LEFT JOIN users m ON m.id = b.mentor_id
WHERE b.id = $1`

const bookingSlotsViewSQL = `
SELECT s.id, s.slot_date, s.start_time, s.end_time, s.price_cents
FROM booking_slots bs
JOIN mentor_slots s ON s.id = bs.slot_id
WHERE bs.booking_id = $1
ORDER BY bs.position`

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*readmodel.BookingRM, error) {
	var (
		bookingID, payerID, mentorID  pgtype.UUID
		gatewayOrderID, gatewayStatus pgtype.Text
		meetingLink                   pgtype.Text
		sessionStart, sessionEnd      pgtype.Timestamptz
		createdAt, updatedAt          pgtype.Timestamptz
		rm                            readmodel.BookingRM
	)
	err := s.db.QueryRow(ctx, bookingViewSQL, pgconv.UUIDToPgtype(id)).Scan(
		&bookingID, &payerID, &mentorID, &rm.MentorName, &rm.AmountCents, &rm.Currency,
		&rm.BookingStatus, &rm.PaymentStatus, &rm.OrderID,
		&gatewayOrderID, &gatewayStatus, &meetingLink,
		&sessionStart, &sessionEnd, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewNotFound("booking not found")
		}
		return nil, infra.WrapRepoErr("failed to get booking", err)
	}
	rm.ID = pgconv.UUIDFromPgtype(bookingID)
	rm.PayerID = pgconv.UUIDFromPgtype(payerID)
	rm.MentorID = pgconv.UUIDFromPgtype(mentorID)
	rm.GatewayOrderID = pgconv.StringPtrFromPgtype(gatewayOrderID)
	rm.GatewayStatus = pgconv.StringPtrFromPgtype(gatewayStatus)
	rm.MeetingLink = pgconv.StringPtrFromPgtype(meetingLink)
	rm.SessionStart = pgconv.TimeFromPgtype(sessionStart)
	rm.SessionEnd = pgconv.TimeFromPgtype(sessionEnd)
	rm.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	rm.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)

	slots, err := s.findSlots(ctx, id)
	if err != nil {
		return nil, err
	}
	rm.Slots = slots
	return &rm, nil
}

func (s *BookingReadStore) findSlots(ctx context.Context, bookingID uuid.UUID) ([]readmodel.BookingSlotRM, error) {
	rows, err := s.db.Query(ctx, bookingSlotsViewSQL, pgconv.UUIDToPgtype(bookingID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booking slots", err)
	}
	defer rows.Close()

	var out []readmodel.BookingSlotRM
	for rows.Next() {
		var (
			id         pgtype.UUID
			date       pgtype.Date
			start, end pgtype.Time
			price      int64
		)
		if err := rows.Scan(&id, &date, &start, &end, &price); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking slot", err)
		}
		startOffset, err := pgconv.TimeOfDayFromPgtype(start)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid slot start time", err)
		}
		endOffset, err := pgconv.TimeOfDayFromPgtype(end)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid slot end time", err)
		}
		out = append(out, readmodel.BookingSlotRM{
			ID:         pgconv.UUIDFromPgtype(id),
			Date:       pgconv.DateFromPgtype(date),
			StartTime:  clockString(startOffset),
			EndTime:    clockString(endOffset),
			PriceCents: price,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking slots", err)
	}
	return out, nil
}

func clockString(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
