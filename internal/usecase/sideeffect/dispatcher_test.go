//go:build unit

package sideeffect_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/pkg/clock"
	"mentor-booking/internal/testutil/builder"
	sharedmock "mentor-booking/internal/testutil/mock/shared"
	sideeffectmock "mentor-booking/internal/testutil/mock/sideeffect"
	"mentor-booking/internal/usecase/readmodel"
	"mentor-booking/internal/usecase/shared"
	"mentor-booking/internal/usecase/sideeffect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2026, 10, 16, 10, 20, 0, 0, time.UTC)

type fixture struct {
	uow      *sharedmock.MockUnitOfWork
	tx       *sharedmock.MockTx
	bookings *sharedmock.MockBookingRepository
	parties  *sharedmock.MockPartyDirectory
	calendar *sideeffectmock.MockCalendarProvider
	mailer   *sideeffectmock.MockMailer
	events   *sharedmock.MockEventPublisher

	booking *booking.Booking
	payer   *readmodel.PartyRM
	mentor  *readmodel.PartyRM
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		uow:      sharedmock.NewMockUnitOfWork(ctrl),
		tx:       sharedmock.NewMockTx(ctrl),
		bookings: sharedmock.NewMockBookingRepository(ctrl),
		parties:  sharedmock.NewMockPartyDirectory(ctrl),
		calendar: sideeffectmock.NewMockCalendarProvider(ctrl),
		mailer:   sideeffectmock.NewMockMailer(ctrl),
		events:   sharedmock.NewMockEventPublisher(ctrl),
	}
	f.booking = builder.NewBookingBuilder().InState(booking.StateConfirmed).BuildDomain()
	f.payer = &readmodel.PartyRM{UserID: f.booking.PayerID(), Name: "Ravi Payer", Email: "ravi@example.com"}
	f.mentor = &readmodel.PartyRM{
		UserID: f.booking.MentorID(),
		Name:   "Asha Mentor",
		Email:  "asha@example.com",
		Calendar: &readmodel.CalendarCredentialRM{
			Provider:     "google",
			AccessToken:  "ya29.mentor",
			RefreshToken: "1//refresh",
		},
	}

	f.tx.EXPECT().Bookings().Return(f.bookings).AnyTimes()
	f.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, f.tx)
		}).AnyTimes()
	return f
}

func (f *fixture) dispatcher() *sideeffect.Dispatcher {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	return sideeffect.NewDispatcher(f.uow, f.parties, f.calendar, f.mailer, f.events, clock.NewMockClock(now), loc)
}

func (f *fixture) expectParties(payer, mentor *readmodel.PartyRM, err error) {
	f.parties.EXPECT().FindByID(gomock.Any(), f.booking.PayerID()).Return(payer, err)
	f.parties.EXPECT().FindByID(gomock.Any(), f.booking.MentorID()).Return(mentor, err)
}

func TestDispatcher_OnBookingConfirmed(t *testing.T) {
	ctx := context.Background()

	t.Run("success: meeting on the mentor calendar, two emails, one event", func(t *testing.T) {
		f := newFixture(t)
		f.expectParties(f.payer, f.mentor, nil)

		f.calendar.EXPECT().CreateEvent(gomock.Any(), *f.mentor.Calendar, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ readmodel.CalendarCredentialRM, ev sideeffect.CalendarEvent) (*sideeffect.CalendarEventResult, error) {
				assert.Equal(t, f.booking.OrderID().String(), ev.RequestID)
				assert.Equal(t, f.booking.SessionStart(), ev.Start)
				assert.Equal(t, f.booking.SessionEnd(), ev.End)
				assert.ElementsMatch(t, []string{"ravi@example.com", "asha@example.com"}, ev.Attendees)
				assert.Contains(t, ev.Summary, "Asha Mentor")
				return &sideeffect.CalendarEventResult{EventID: "evt_1", MeetingLink: "https://meet.google.com/abc-defg-hij"}, nil
			})
		f.bookings.EXPECT().SetMeetingLink(gomock.Any(), f.booking.ID(), "https://meet.google.com/abc-defg-hij", now).Return(nil)

		var sent []sideeffect.Email
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg sideeffect.Email) error {
			sent = append(sent, msg)
			return nil
		}).Times(2)
		f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev shared.BookingEvent) error {
			assert.Equal(t, shared.EventBookingConfirmed, ev.Type)
			assert.Equal(t, f.booking.ID(), ev.BookingID)
			assert.Equal(t, "paid", ev.PaymentStatus)
			assert.Equal(t, now, ev.OccurredAt)
			return nil
		})

		f.dispatcher().OnBookingConfirmed(ctx, f.booking)

		require.Len(t, sent, 2)
		assert.Equal(t, "ravi@example.com", sent[0].To)
		assert.Equal(t, "asha@example.com", sent[1].To)
		for _, msg := range sent {
			assert.Contains(t, msg.HTMLBody, "https://meet.google.com/abc-defg-hij")
			// 10:00 UTC rendered in the schedule zone
			assert.Contains(t, msg.HTMLBody, "Mon, 02 Nov 2026 15:30")
			assert.Contains(t, msg.HTMLBody, "Asia/Kolkata")
		}
		assert.Contains(t, sent[0].HTMLBody, "Hi Ravi Payer")
		assert.Contains(t, sent[0].HTMLBody, "with Asha Mentor")
		require.NotNil(t, f.booking.MeetingLink())
		assert.Equal(t, "https://meet.google.com/abc-defg-hij", *f.booking.MeetingLink())
	})

	t.Run("success: payer calendar is used when the mentor has none", func(t *testing.T) {
		f := newFixture(t)
		payerCal := readmodel.CalendarCredentialRM{Provider: "google", AccessToken: "ya29.payer"}
		f.payer.Calendar = &payerCal
		f.mentor.Calendar = nil
		f.expectParties(f.payer, f.mentor, nil)

		f.calendar.EXPECT().CreateEvent(gomock.Any(), payerCal, gomock.Any()).
			Return(&sideeffect.CalendarEventResult{EventID: "evt_2", MeetingLink: "https://meet.google.com/x"}, nil)
		f.bookings.EXPECT().SetMeetingLink(gomock.Any(), f.booking.ID(), "https://meet.google.com/x", now).Return(nil)
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		f.dispatcher().OnBookingConfirmed(ctx, f.booking)
	})

	t.Run("calendar failure leaves the link empty and still notifies", func(t *testing.T) {
		f := newFixture(t)
		f.expectParties(f.payer, f.mentor, nil)
		f.calendar.EXPECT().CreateEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("invalid_grant"))

		var bodies []string
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg sideeffect.Email) error {
			bodies = append(bodies, msg.HTMLBody)
			return nil
		}).Times(2)
		f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		f.dispatcher().OnBookingConfirmed(ctx, f.booking)

		assert.Nil(t, f.booking.MeetingLink())
		for _, b := range bodies {
			assert.Contains(t, b, "A meeting link will be shared separately.")
		}
	})

	t.Run("no connected calendar skips meeting creation", func(t *testing.T) {
		f := newFixture(t)
		f.mentor.Calendar = nil
		f.expectParties(f.payer, f.mentor, nil)
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		f.dispatcher().OnBookingConfirmed(ctx, f.booking)

		assert.Nil(t, f.booking.MeetingLink())
	})

	t.Run("every step failing still runs every later step", func(t *testing.T) {
		f := newFixture(t)
		f.expectParties(f.payer, f.mentor, nil)
		f.calendar.EXPECT().CreateEvent(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&sideeffect.CalendarEventResult{EventID: "evt_3", MeetingLink: "https://meet.google.com/y"}, nil)
		f.bookings.EXPECT().SetMeetingLink(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp 421")).Times(2)
		f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("channel closed"))

		f.dispatcher().OnBookingConfirmed(ctx, f.booking)

		assert.Nil(t, f.booking.MeetingLink(), "an unpersisted link is not reported")
	})

	t.Run("unresolvable parties only skip their own steps", func(t *testing.T) {
		f := newFixture(t)
		f.expectParties(nil, nil, errors.New("user not found"))
		f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		f.dispatcher().OnBookingConfirmed(ctx, f.booking)
	})

	t.Run("party without email gets no mail", func(t *testing.T) {
		f := newFixture(t)
		f.mentor.Calendar = nil
		f.payer.Email = ""
		f.expectParties(f.payer, f.mentor, nil)
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg sideeffect.Email) error {
			assert.Equal(t, "asha@example.com", msg.To)
			return nil
		})
		f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		f.dispatcher().OnBookingConfirmed(ctx, f.booking)
	})
}
