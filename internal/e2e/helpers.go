//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"testing"

	"mentor-booking/internal/domain/payment"
	reqdto "mentor-booking/internal/handler/dto/request"
	resdto "mentor-booking/internal/handler/dto/response"
	"mentor-booking/internal/testutil/httptest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	BookingsURL = "/api/bookings"
	WebhookURL  = "/api/payments/webhook"
)

// CreateBooking posts a booking request and requires a 201.
func (s *SharedSuite) CreateBooking(t *testing.T, token string, mentorID uuid.UUID, slotIDs ...uuid.UUID) resdto.CreateBookingResponse {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, BookingsURL,
		reqdto.CreateBookingRequest{MentorID: mentorID, SlotIDs: slotIDs}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp resdto.CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Booking)
	return resp
}

// PostSignedWebhook signs body with the configured secret and delivers it.
func (s *SharedSuite) PostSignedWebhook(t *testing.T, body []byte) (int, []byte) {
	t.Helper()

	sig := payment.Sign(s.Config.Webhook.Secret, body)
	w := httptest.PerformRawRequest(t, s.Router, http.MethodPost, WebhookURL, body, "",
		map[string]string{s.Config.Webhook.SignatureHeader: sig})
	return w.Code, w.Body.Bytes()
}

// EventPayload builds the envelope shape with the order nested under content.
func EventPayload(t *testing.T, eventName, orderID, status string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"event_name": eventName,
		"content": map[string]any{
			"order": map[string]any{
				"order_id": orderID,
				"status":   status,
				"txn_id":   "txn_" + orderID,
			},
		},
	})
	require.NoError(t, err)
	return body
}

// BareOrderPayload builds the order object posted on its own.
func BareOrderPayload(t *testing.T, orderID, status string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"order_id": orderID,
		"status":   status,
	})
	require.NoError(t, err)
	return body
}
