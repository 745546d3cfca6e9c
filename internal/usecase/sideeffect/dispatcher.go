package sideeffect

import (
	"context"
	"log/slog"
	"time"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/pkg/clock"
	"mentor-booking/internal/pkg/obs"
	"mentor-booking/internal/usecase/readmodel"
	"mentor-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Dispatcher runs the post-confirmation steps in order. Every step logs its own
// failure and the sequence carries on; nothing here can undo the payment.
type Dispatcher struct {
	uow      shared.UnitOfWork
	parties  shared.PartyDirectory
	calendar CalendarProvider
	mailer   Mailer
	events   shared.EventPublisher
	clock    clock.Clock
	location *time.Location
}

func NewDispatcher(
	uow shared.UnitOfWork,
	parties shared.PartyDirectory,
	calendar CalendarProvider,
	mailer Mailer,
	events shared.EventPublisher,
	clk clock.Clock,
	location *time.Location,
) *Dispatcher {
	return &Dispatcher{
		uow:      uow,
		parties:  parties,
		calendar: calendar,
		mailer:   mailer,
		events:   events,
		clock:    clk,
		location: location,
	}
}

func (d *Dispatcher) OnBookingConfirmed(ctx context.Context, b *booking.Booking) {
	ctx, span := obs.StartSpan(ctx, "sideeffect.booking_confirmed")
	defer span.End()
	log := slog.With("booking_id", b.ID(), "order_id", b.OrderID())

	payer := d.party(ctx, log, b.PayerID(), "payer")
	mentor := d.party(ctx, log, b.MentorID(), "mentor")

	link := d.createMeeting(ctx, log, b, payer, mentor)
	span.SetAttributes(attribute.Bool("sideeffect.meeting_link", link != ""))

	if link != "" {
		err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Bookings().SetMeetingLink(ctx, b.ID(), link, d.clock.Now())
		})
		if err != nil {
			log.Error("failed to persist meeting link", "error", err.Error())
		} else {
			b.SetMeetingLink(link)
		}
	}

	d.notify(ctx, log, b, payer, mentor, link)
	d.notify(ctx, log, b, mentor, payer, link)

	ev := shared.BookingEvent{
		Type:          shared.EventBookingConfirmed,
		BookingID:     b.ID(),
		OrderID:       b.OrderID().String(),
		PayerID:       b.PayerID(),
		MentorID:      b.MentorID(),
		PaymentStatus: b.PaymentStatus().String(),
		BookingStatus: b.BookingStatus().String(),
		AmountCents:   b.Amount().Cents(),
		Currency:      b.Amount().Currency(),
		OccurredAt:    d.clock.Now(),
	}
	if err := d.events.Publish(ctx, ev); err != nil {
		log.Warn("failed to publish booking event", "type", ev.Type, "error", err.Error())
	}
}

func (d *Dispatcher) party(ctx context.Context, log *slog.Logger, id uuid.UUID, role string) *readmodel.PartyRM {
	p, err := d.parties.FindByID(ctx, id)
	if err != nil {
		log.Warn("failed to resolve party", "role", role, "user_id", id, "error", err.Error())
		return nil
	}
	return p
}

// createMeeting uses the mentor's calendar when connected, otherwise the payer's.
// No connected calendar is a valid outcome and yields no link.
func (d *Dispatcher) createMeeting(ctx context.Context, log *slog.Logger, b *booking.Booking, payer, mentor *readmodel.PartyRM) string {
	var owner *readmodel.PartyRM
	switch {
	case mentor != nil && mentor.Calendar != nil:
		owner = mentor
	case payer != nil && payer.Calendar != nil:
		owner = payer
	default:
		log.Info("no connected calendar, skipping meeting creation")
		return ""
	}

	var attendees []string
	for _, p := range []*readmodel.PartyRM{payer, mentor} {
		if p != nil && p.Email != "" {
			attendees = append(attendees, p.Email)
		}
	}

	res, err := d.calendar.CreateEvent(ctx, *owner.Calendar, CalendarEvent{
		RequestID:   b.OrderID().String(),
		Summary:     "Mentorship session with " + nameOf(mentor, "your mentor"),
		Description: "Booking " + b.ID().String() + " (order " + b.OrderID().String() + ")",
		Start:       b.SessionStart(),
		End:         b.SessionEnd(),
		Attendees:   attendees,
	})
	if err != nil {
		log.Error("calendar event creation failed", "calendar_owner", owner.UserID, "error", err.Error())
		return ""
	}
	if res.MeetingLink == "" {
		log.Warn("calendar event created without a meeting link", "event_id", res.EventID)
	}
	return res.MeetingLink
}

func (d *Dispatcher) notify(ctx context.Context, log *slog.Logger, b *booking.Booking, recipient, counterpart *readmodel.PartyRM, link string) {
	if recipient == nil || recipient.Email == "" {
		return
	}

	body, err := renderConfirmation(confirmationData{
		RecipientName:   recipient.Name,
		CounterpartName: nameOf(counterpart, "your session partner"),
		Start:           formatSessionTime(b.SessionStart(), d.location),
		End:             formatSessionTime(b.SessionEnd(), d.location),
		TimeZone:        d.zoneName(),
		BookingID:       b.ID().String(),
		Amount:          b.Amount().String(),
		MeetingLink:     link,
	})
	if err != nil {
		log.Error("failed to render confirmation email", "error", err.Error())
		return
	}

	err = d.mailer.Send(ctx, Email{
		To:       recipient.Email,
		Subject:  "Your mentorship session is confirmed",
		HTMLBody: body,
	})
	if err != nil {
		log.Error("failed to send confirmation email", "recipient", recipient.UserID, "error", err.Error())
	}
}

func (d *Dispatcher) zoneName() string {
	if d.location == nil {
		return "UTC"
	}
	return d.location.String()
}

func nameOf(p *readmodel.PartyRM, fallback string) string {
	if p == nil || p.Name == "" {
		return fallback
	}
	return p.Name
}
