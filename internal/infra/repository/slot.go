package repository

import (
	"context"

	"mentor-booking/internal/domain/slot"
	"mentor-booking/internal/infra"
	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Rows are locked in id order so concurrent claims over overlapping sets cannot deadlock.
const lockSlotsForClaimSQL = `
SELECT id, mentor_id, slot_date, start_time, end_time, is_booked, is_active, price_cents
FROM mentor_slots
WHERE id = ANY($1::uuid[])
ORDER BY id
FOR UPDATE`

const claimSlotsSQL = `
UPDATE mentor_slots
SET is_booked = true, updated_at = now()
WHERE id = ANY($1::uuid[])
  AND mentor_id = $2
  AND is_active
  AND NOT is_booked`

const confirmSlotsBookedSQL = `
UPDATE mentor_slots
SET is_booked = true, updated_at = now()
WHERE id = ANY($1::uuid[])`

type SlotRepository struct {
	db db.DBTX
}

func NewSlotRepository(dbtx db.DBTX) *SlotRepository {
	return &SlotRepository{db: dbtx}
}

func (r *SlotRepository) LockForClaim(ctx context.Context, ids []uuid.UUID) ([]*slot.Slot, error) {
	rows, err := r.db.Query(ctx, lockSlotsForClaimSQL, pgconv.UUIDsToPgtype(ids))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock slots", err)
	}
	defer rows.Close()

	slots := make([]*slot.Slot, 0, len(ids))
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate slots", err)
	}
	return slots, nil
}

func (r *SlotRepository) Claim(ctx context.Context, mentorID uuid.UUID, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, claimSlotsSQL, pgconv.UUIDsToPgtype(ids), pgconv.UUIDToPgtype(mentorID))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to claim slots", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) ConfirmBooked(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, confirmSlotsBookedSQL, pgconv.UUIDsToPgtype(ids))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to confirm slots booked", err)
	}
	return tag.RowsAffected(), nil
}

func scanSlot(row pgx.Row) (*slot.Slot, error) {
	var (
		id, mentorID       pgtype.UUID
		date               pgtype.Date
		start, end         pgtype.Time
		isBooked, isActive bool
		price              int64
	)
	if err := row.Scan(&id, &mentorID, &date, &start, &end, &isBooked, &isActive, &price); err != nil {
		return nil, infra.WrapRepoErr("failed to scan slot", err)
	}

	startOffset, err := pgconv.TimeOfDayFromPgtype(start)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid slot start time", err)
	}
	endOffset, err := pgconv.TimeOfDayFromPgtype(end)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid slot end time", err)
	}

	s, err := slot.Reconstruct(
		pgconv.UUIDFromPgtype(id),
		pgconv.UUIDFromPgtype(mentorID),
		pgconv.DateFromPgtype(date),
		startOffset, endOffset,
		isBooked, isActive,
		price,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid slot row", err)
	}
	return s, nil
}
