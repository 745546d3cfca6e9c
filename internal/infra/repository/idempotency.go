package repository

import (
	"context"
	"time"

	"mentor-booking/internal/infra"
	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
)

// An expired key is reclaimed in place; a live one is left for the caller to inspect.
const tryInsertIdempotencyKeySQL = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id) DO UPDATE SET
    endpoint          = EXCLUDED.endpoint,
    request_hash      = EXCLUDED.request_hash,
    status            = 'processing',
    result_booking_id = NULL,
    expires_at        = EXCLUDED.expires_at,
    created_at        = now()
WHERE idempotency_keys.expires_at < now()`

const completeIdempotencyKeySQL = `
UPDATE idempotency_keys
SET status = 'completed', result_booking_id = $3
WHERE key = $1 AND user_id = $2 AND status = 'processing'`

const releaseIdempotencyKeySQL = `
DELETE FROM idempotency_keys
WHERE key = $1 AND user_id = $2 AND status = 'processing'`

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, tryInsertIdempotencyKeySQL,
		pgconv.UUIDToPgtype(key),
		pgconv.UUIDToPgtype(userID),
		endpoint,
		requestHash,
		pgconv.TimeToPgtype(expiresAt),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key, userID, bookingID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, completeIdempotencyKeySQL,
		pgconv.UUIDToPgtype(key),
		pgconv.UUIDToPgtype(userID),
		pgconv.UUIDToPgtype(bookingID),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewNotFound("idempotency key not in processing state")
	}
	return nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, releaseIdempotencyKeySQL, pgconv.UUIDToPgtype(key), pgconv.UUIDToPgtype(userID)); err != nil {
		return infra.WrapRepoErr("failed to release idempotency key", err)
	}
	return nil
}
