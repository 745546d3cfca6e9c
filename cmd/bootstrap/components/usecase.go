package components

import (
	"crypto/rand"
	"io"

	"mentor-booking/internal/pkg/clock"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/usecase"
	"mentor-booking/internal/usecase/commands"
	"mentor-booking/internal/usecase/queries"
	"mentor-booking/internal/usecase/shared"
	"mentor-booking/internal/usecase/sideeffect"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	// order id entropy
	func() io.Reader { return rand.Reader },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		NewSettlementCommands,
		fx.Annotate(
			NewDispatcher,
			fx.As(new(commands.ConfirmationDispatcher)),
		),
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewSettlementCommands(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	dispatcher commands.ConfirmationDispatcher,
	events shared.EventPublisher,
	clk clock.Clock,
	cfg config.BookingConfig,
) commands.SettlementCommands {
	return commands.NewSettlementCommands(uow, gateway, dispatcher, events, clk, cfg.SideEffectTimeout)
}

func NewDispatcher(
	uow shared.UnitOfWork,
	parties shared.PartyDirectory,
	calendar sideeffect.CalendarProvider,
	mailer sideeffect.Mailer,
	events shared.EventPublisher,
	clk clock.Clock,
	cfg config.BookingConfig,
) *sideeffect.Dispatcher {
	return sideeffect.NewDispatcher(uow, parties, calendar, mailer, events, clk, cfg.Location())
}
