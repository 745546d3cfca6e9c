//go:build unit

package pgconv_test

import (
	"database/sql"
	"testing"
	"time"

	"mentor-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDay(t *testing.T) {
	d, err := pgconv.TimeOfDayFromPgtype(pgconv.TimeOfDayToPgtype(15*time.Hour + 30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Hour+30*time.Minute, d)

	// 24:00 is a valid TIME value for an end of day.
	d, err = pgconv.TimeOfDayFromPgtype(pgtype.Time{Microseconds: 24 * int64(time.Hour/time.Microsecond), Valid: true})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	_, err = pgconv.TimeOfDayFromPgtype(pgtype.Time{})
	assert.ErrorIs(t, err, pgconv.ErrInvalidTimeOfDay)

	_, err = pgconv.TimeOfDayFromPgtype(pgtype.Time{Microseconds: -1, Valid: true})
	assert.ErrorIs(t, err, pgconv.ErrInvalidTimeOfDay)
}

func TestDateFromPgtype(t *testing.T) {
	ist := time.FixedZone("IST", 19800)
	got := pgconv.DateFromPgtype(pgtype.Date{Time: time.Date(2026, 11, 2, 0, 0, 0, 0, ist), Valid: true})
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), got)
	assert.True(t, pgconv.DateFromPgtype(pgtype.Date{}).IsZero())
}

func TestNullableConversions(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, pgconv.UUIDFromPgtype(pgconv.UUIDToPgtype(id)))
	assert.Equal(t, uuid.Nil, pgconv.UUIDFromPgtype(pgtype.UUID{}))
	assert.Nil(t, pgconv.UUIDPtrFromPgtype(pgconv.UUIDPtrToPgtype(nil)))
	assert.Equal(t, &id, pgconv.UUIDPtrFromPgtype(pgconv.UUIDPtrToPgtype(&id)))

	assert.False(t, pgconv.EmptyToNullText("").Valid)
	assert.Equal(t, "x", pgconv.EmptyToNullText("x").String)
	assert.Nil(t, pgconv.StringPtrFromPgtype(pgconv.StringPtrToPgtype(nil)))
	assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))

	ids := pgconv.UUIDsToPgtype([]uuid.UUID{id, id})
	assert.Len(t, ids, 2)
	assert.True(t, ids[1].Valid)
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, pgconv.IsNoRows(pgx.ErrNoRows))
	assert.True(t, pgconv.IsNoRows(sql.ErrNoRows))
	assert.False(t, pgconv.IsNoRows(nil))
}
