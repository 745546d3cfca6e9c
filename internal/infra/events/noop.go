package events

import (
	"context"
	"log/slog"

	"mentor-booking/internal/usecase/shared"
)

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(_ context.Context, ev shared.BookingEvent) error {
	slog.Debug("booking event not published, no broker configured",
		"type", ev.Type,
		"booking_id", ev.BookingID)
	return nil
}
