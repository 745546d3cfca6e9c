//go:build unit

package calendar_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentor-booking/internal/infra/calendar"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/readmodel"
	"mentor-booking/internal/usecase/sideeffect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newEvent() sideeffect.CalendarEvent {
	start := time.Date(2026, 11, 2, 4, 30, 0, 0, time.UTC)
	return sideeffect.CalendarEvent{
		RequestID:   "MB261016101500ABC123",
		Summary:     "Mentorship session",
		Description: "Booked through mentor-booking",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		Attendees:   []string{"payer@example.com", "", "mentor@example.com"},
	}
}

func googleCred() readmodel.CalendarCredentialRM {
	return readmodel.CalendarCredentialRM{Provider: calendar.ProviderGoogle, AccessToken: "access-token"}
}

func TestGoogle_CreateEvent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("conferenceDataVersion"))
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"evt_1","hangoutLink":"https://meet.google.com/abc-defg-hij"}`)
	}))
	defer srv.Close()

	g := calendar.NewGoogle(config.CalendarConfig{GoogleClientID: "id", GoogleClientSecret: "secret"},
		option.WithEndpoint(srv.URL+"/"))

	res, err := g.CreateEvent(context.Background(), googleCred(), newEvent())
	require.NoError(t, err)

	assert.Equal(t, "evt_1", res.EventID)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", res.MeetingLink)
	assert.Equal(t, "Mentorship session", got["summary"])
	assert.Len(t, got["attendees"], 2)
	start := got["start"].(map[string]any)
	assert.Equal(t, "2026-11-02T04:30:00Z", start["dateTime"])
	conf := got["conferenceData"].(map[string]any)["createRequest"].(map[string]any)
	assert.Equal(t, "MB261016101500ABC123", conf["requestId"])
}

func TestGoogle_CreateEvent_EntryPointFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"evt_2","conferenceData":{"entryPoints":[{"entryPointType":"phone","uri":"tel:+1"},{"entryPointType":"video","uri":"https://meet.google.com/xyz"}]}}`)
	}))
	defer srv.Close()

	g := calendar.NewGoogle(config.CalendarConfig{}, option.WithEndpoint(srv.URL+"/"))
	res, err := g.CreateEvent(context.Background(), googleCred(), newEvent())
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/xyz", res.MeetingLink)
}

func TestGoogle_CreateEvent_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		cred    readmodel.CalendarCredentialRM
		wantErr error
	}{
		{
			name:    "unsupported provider",
			cred:    readmodel.CalendarCredentialRM{Provider: "outlook", AccessToken: "x"},
			wantErr: calendar.ErrUnsupportedProvider,
		},
		{
			name:    "no meeting link",
			status:  http.StatusOK,
			body:    `{"id":"evt_3"}`,
			cred:    googleCred(),
			wantErr: calendar.ErrNoMeetingLink,
		},
		{
			name:   "api error",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"message":"insufficient scope"}}`,
			cred:   googleCred(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			g := calendar.NewGoogle(config.CalendarConfig{}, option.WithEndpoint(srv.URL+"/"))
			res, err := g.CreateEvent(context.Background(), tt.cred, newEvent())
			require.Error(t, err)
			assert.Nil(t, res)
			if tt.wantErr != nil {
				assert.True(t, errs.Is(err, tt.wantErr))
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	_, err := calendar.Disabled{}.CreateEvent(context.Background(), googleCred(), newEvent())
	assert.True(t, errs.Is(err, calendar.ErrCalendarDisabled))
}
