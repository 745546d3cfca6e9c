package bootstrap

import (
	"log/slog"
	"net/http"

	"mentor-booking/internal/infra/gateway"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewPaymentGateway,
	),
)

func NewPaymentGateway(cfg config.Config) shared.PaymentGateway {
	if cfg.Gateway.Mode == config.GatewayModeMock {
		slog.Warn("payment gateway running in mock mode, no real payments will be taken")
		return gateway.NewMockGateway("http://localhost:" + cfg.Server.Port)
	}
	return gateway.NewSmartGateway(cfg.Gateway, &http.Client{Timeout: cfg.Gateway.Timeout})
}
