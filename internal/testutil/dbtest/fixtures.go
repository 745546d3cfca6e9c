//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestUser(t *testing.T, db DBLike, name, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()
	tag, err := db.Exec(ctx,
		"INSERT INTO users (id, email, name, phone, role) VALUES ($1, $2, $3, '+910000000000', $4) ON CONFLICT (email) DO NOTHING",
		userID, email, name, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		err = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
		require.NoError(t, err)
	}
	return userID
}

// CreateTestSlot inserts an open one-hour slot starting at hour on day.
func CreateTestSlot(t *testing.T, db DBLike, mentorID uuid.UUID, day time.Time, hour int, priceCents int64) uuid.UUID {
	t.Helper()

	slotID := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO mentor_slots (id, mentor_id, slot_date, start_time, end_time, price_cents)
		 VALUES ($1, $2, $3::date, $4::time, $5::time, $6)`,
		slotID, mentorID, day.Format(time.DateOnly), fmt.Sprintf("%02d:00", hour), fmt.Sprintf("%02d:00", hour+1), priceCents)
	require.NoError(t, err)
	return slotID
}

func CreateTestSlots(t *testing.T, db DBLike, mentorID uuid.UUID, day time.Time, fromHour, n int, priceCents int64) []uuid.UUID {
	t.Helper()

	ids := make([]uuid.UUID, n)
	for i := range n {
		ids[i] = CreateTestSlot(t, db, mentorID, day, fromHour+i, priceCents)
	}
	return ids
}

func CreateCalendarCredential(t *testing.T, db DBLike, userID uuid.UUID) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO calendar_credentials (user_id, access_token, refresh_token, token_expiry)
		 VALUES ($1, 'test-access', 'test-refresh', now() + interval '1 hour')`,
		userID)
	require.NoError(t, err)
}

func IsSlotBooked(t *testing.T, db DBLike, slotID uuid.UUID) bool {
	t.Helper()

	var booked bool
	err := db.QueryRow(context.Background(), "SELECT is_booked FROM mentor_slots WHERE id = $1", slotID).Scan(&booked)
	require.NoError(t, err)
	return booked
}

type BookingRow struct {
	PaymentStatus string
	BookingStatus string
	GatewayStatus *string
	MeetingLink   *string
	HasPayload    bool
}

func GetBookingRow(t *testing.T, db DBLike, bookingID uuid.UUID) BookingRow {
	t.Helper()

	var r BookingRow
	err := db.QueryRow(context.Background(),
		`SELECT payment_status, booking_status, gateway_status, meeting_link, gateway_payload IS NOT NULL
		 FROM bookings WHERE id = $1`, bookingID).
		Scan(&r.PaymentStatus, &r.BookingStatus, &r.GatewayStatus, &r.MeetingLink, &r.HasPayload)
	require.NoError(t, err)
	return r
}

func CountRows(t *testing.T, db DBLike, table string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every public table.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
