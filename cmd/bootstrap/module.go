package bootstrap

import (
	"mentor-booking/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	TracingModule,
	DBModule,
	JWTModule,
	GatewayModule,
	SideEffectModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
