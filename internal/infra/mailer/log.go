package mailer

import (
	"context"
	"log/slog"

	"mentor-booking/internal/usecase/sideeffect"
)

// Log stands in for SMTP in development; the message is written to the log instead.
type Log struct{}

func (Log) Send(_ context.Context, msg sideeffect.Email) error {
	slog.Info("mail suppressed",
		"to", msg.To,
		"subject", msg.Subject,
		"body_bytes", len(msg.HTMLBody))
	return nil
}
