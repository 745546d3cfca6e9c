//go:build unit

package mailer

import (
	"context"
	"testing"

	"mentor-booking/internal/usecase/sideeffect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage("sessions@mentor-booking.test", sideeffect.Email{
		To:       "payer@example.com",
		Subject:  "Your session is confirmed",
		HTMLBody: "<p>hello</p>",
	})
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"payer@example.com"}, rcpts)
	assert.Equal(t, []string{"Your session is confirmed"}, m.GetGenHeader(mail.HeaderSubject))
}

func TestBuildMessage_InvalidAddress(t *testing.T) {
	_, err := buildMessage("sessions@mentor-booking.test", sideeffect.Email{To: "not an address"})
	assert.Error(t, err)

	_, err = buildMessage("", sideeffect.Email{To: "payer@example.com"})
	assert.Error(t, err)
}

func TestLog_Send(t *testing.T) {
	assert.NoError(t, Log{}.Send(context.Background(), sideeffect.Email{To: "payer@example.com"}))
}
