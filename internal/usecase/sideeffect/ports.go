package sideeffect

//go:generate mockgen -source=ports.go -destination=../../testutil/mock/sideeffect/ports_mock.go -package=sideeffectmock

import (
	"context"
	"time"

	"mentor-booking/internal/usecase/readmodel"
)

type CalendarEvent struct {
	// RequestID makes conference creation idempotent on the provider side.
	RequestID   string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

type CalendarEventResult struct {
	EventID     string
	MeetingLink string
}

// CalendarProvider creates an event on the calendar the credential grants access to
// and returns a joinable meeting link, or an error.
type CalendarProvider interface {
	CreateEvent(ctx context.Context, cred readmodel.CalendarCredentialRM, ev CalendarEvent) (*CalendarEventResult, error)
}

type Email struct {
	To       string
	Subject  string
	HTMLBody string
}

type Mailer interface {
	Send(ctx context.Context, msg Email) error
}
