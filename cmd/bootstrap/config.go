package bootstrap

import (
	"mentor-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
	SubConfigs,
)

// SubConfigs narrows Config for constructors that only need one section.
var SubConfigs = fx.Provide(
	func(cfg config.Config) config.BookingConfig { return cfg.Booking },
	func(cfg config.Config) config.WebhookConfig { return cfg.Webhook },
)
