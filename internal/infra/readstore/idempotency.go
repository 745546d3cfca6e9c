package readstore

import (
	"context"
	"time"

	"mentor-booking/internal/infra"
	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/pgconv"
	"mentor-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getIdempotencyKeySQL = `
SELECT key, user_id, status, request_hash, result_booking_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

type IdempotencyReadStore struct {
	db  db.DBTX
	now func() time.Time
}

func NewIdempotencyReadStore(dbtx db.DBTX, now func() time.Time) *IdempotencyReadStore {
	if now == nil {
		now = time.Now
	}
	return &IdempotencyReadStore{db: dbtx, now: now}
}

func (r *IdempotencyReadStore) Get(ctx context.Context, key uuid.UUID, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		k, u      pgtype.UUID
		result    pgtype.UUID
		expiresAt pgtype.Timestamptz
		record    shared.IdempotencyRecord
	)
	err := r.db.QueryRow(ctx, getIdempotencyKeySQL, pgconv.UUIDToPgtype(key), pgconv.UUIDToPgtype(userID)).Scan(
		&k, &u, &record.Status, &record.RequestHash, &result, &expiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewNotFound("idempotency key not found")
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	record.Key = pgconv.UUIDFromPgtype(k)
	record.UserID = pgconv.UUIDFromPgtype(u)
	record.ResultBookingID = pgconv.UUIDPtrFromPgtype(result)
	record.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)

	if r.now().After(record.ExpiresAt) {
		return nil, infra.NewNotFound("idempotency key expired")
	}
	return &record, nil
}
