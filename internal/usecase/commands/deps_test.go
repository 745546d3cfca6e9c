//go:build unit

package commands_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"mentor-booking/internal/pkg/clock"
	"mentor-booking/internal/pkg/config"
	sharedmock "mentor-booking/internal/testutil/mock/shared"
	"mentor-booking/internal/usecase/shared"

	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 10, 16, 10, 15, 0, 0, time.UTC)

// deps wires every port to a gomock double; Within runs fn against the mocked Tx.
type deps struct {
	uow      *sharedmock.MockUnitOfWork
	tx       *sharedmock.MockTx
	slots    *sharedmock.MockSlotRepository
	bookings *sharedmock.MockBookingRepository
	idem     *sharedmock.MockIdempotencyRepository
	reads    *sharedmock.MockCommandReads
	gateway  *sharedmock.MockPaymentGateway
	parties  *sharedmock.MockPartyDirectory
	events   *sharedmock.MockEventPublisher
	clock    *clock.MockClock
}

func newDeps(t *testing.T) *deps {
	ctrl := gomock.NewController(t)
	d := &deps{
		uow:      sharedmock.NewMockUnitOfWork(ctrl),
		tx:       sharedmock.NewMockTx(ctrl),
		slots:    sharedmock.NewMockSlotRepository(ctrl),
		bookings: sharedmock.NewMockBookingRepository(ctrl),
		idem:     sharedmock.NewMockIdempotencyRepository(ctrl),
		reads:    sharedmock.NewMockCommandReads(ctrl),
		gateway:  sharedmock.NewMockPaymentGateway(ctrl),
		parties:  sharedmock.NewMockPartyDirectory(ctrl),
		events:   sharedmock.NewMockEventPublisher(ctrl),
		clock:    clock.NewMockClock(testNow),
	}
	d.tx.EXPECT().Slots().Return(d.slots).AnyTimes()
	d.tx.EXPECT().Bookings().Return(d.bookings).AnyTimes()
	d.tx.EXPECT().Idempotency().Return(d.idem).AnyTimes()
	d.tx.EXPECT().Reads().Return(d.reads).AnyTimes()
	d.uow.EXPECT().CommandReads().Return(d.reads).AnyTimes()
	d.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, d.tx)
		}).AnyTimes()
	return d
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		Currency:          "INR",
		ScheduleTimeZone:  "UTC",
		IdempotencyTTL:    24 * time.Hour,
		SideEffectTimeout: time.Second,
	}
}

// fixedEntropy yields order ids ending in ABCDEF.
func fixedEntropy() *bytes.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{0xab, 0xcd, 0xef}, 8))
}
