package bootstrap

import (
	"context"
	"log/slog"

	"mentor-booking/internal/infra/calendar"
	"mentor-booking/internal/infra/events"
	"mentor-booking/internal/infra/mailer"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/usecase/shared"
	"mentor-booking/internal/usecase/sideeffect"

	"go.uber.org/fx"
)

var SideEffectModule = fx.Module("sideeffect",
	fx.Provide(
		NewCalendarProvider,
		NewMailer,
		NewEventPublisher,
	),
)

func NewCalendarProvider(cfg config.Config) sideeffect.CalendarProvider {
	if !cfg.Calendar.Enabled() {
		slog.Info("calendar integration disabled: no Google client configured")
		return calendar.Disabled{}
	}
	return calendar.NewGoogle(cfg.Calendar)
}

func NewMailer(cfg config.Config) (sideeffect.Mailer, error) {
	if cfg.Mail.SMTPHost == "" {
		slog.Info("SMTP not configured, confirmation emails are logged only")
		return mailer.Log{}, nil
	}
	return mailer.NewSMTP(cfg.Mail)
}

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (shared.EventPublisher, error) {
	if cfg.Events.RabbitURL == "" {
		return events.Noop{}, nil
	}
	pub, err := events.NewRabbitPublisher(cfg.Events.RabbitURL, cfg.Events.Exchange)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}
