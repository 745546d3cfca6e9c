package calendar

import (
	"context"
	"time"

	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/readmodel"
	"mentor-booking/internal/usecase/sideeffect"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const ProviderGoogle = "google"

var (
	ErrUnsupportedProvider = errs.New("unsupported calendar provider")
	ErrNoMeetingLink       = errs.New("calendar event created without a meeting link")
	ErrCalendarDisabled    = errs.New("calendar integration is not configured")
)

// Google creates events on the credential owner's calendar with a Meet conference attached.
type Google struct {
	oauth      *oauth2.Config
	calendarID string
	opts       []option.ClientOption
}

func NewGoogle(cfg config.CalendarConfig, opts ...option.ClientOption) *Google {
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarEventsScope},
		},
		calendarID: calendarID,
		opts:       opts,
	}
}

func (g *Google) CreateEvent(ctx context.Context, cred readmodel.CalendarCredentialRM, ev sideeffect.CalendarEvent) (*sideeffect.CalendarEventResult, error) {
	if cred.Provider != ProviderGoogle {
		return nil, errs.Wrapf(ErrUnsupportedProvider, "provider %q", cred.Provider)
	}

	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
	}
	if cred.Expiry != nil {
		token.Expiry = *cred.Expiry
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(g.oauth.Client(ctx, token))}, g.opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build calendar client")
	}

	attendees := make([]*gcal.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		if email == "" {
			continue
		}
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}

	created, err := svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.UTC().Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: ev.End.UTC().Format(time.RFC3339)},
		Attendees:   attendees,
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             ev.RequestID,
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}).ConferenceDataVersion(1).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, errs.Wrap(err, "failed to insert calendar event")
	}

	link := meetingLink(created)
	if link == "" {
		return nil, errs.Wrapf(ErrNoMeetingLink, "event %s", created.Id)
	}
	return &sideeffect.CalendarEventResult{EventID: created.Id, MeetingLink: link}, nil
}

func meetingLink(ev *gcal.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData == nil {
		return ""
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" && ep.Uri != "" {
			return ep.Uri
		}
	}
	return ""
}

// Disabled is wired when no OAuth client is configured; every call fails and the
// dispatcher carries on without a meeting link.
type Disabled struct{}

func (Disabled) CreateEvent(context.Context, readmodel.CalendarCredentialRM, sideeffect.CalendarEvent) (*sideeffect.CalendarEventResult, error) {
	return nil, ErrCalendarDisabled
}
