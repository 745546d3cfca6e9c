package components

import (
	"mentor-booking/internal/infra/readstore"
	"mentor-booking/internal/infra/uow"
	"mentor-booking/internal/usecase/queries"
	"mentor-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

// Write-side repositories are built per transaction inside the unit of work.
var RepositoryModule = fx.Module("repository",
	fx.Provide(
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewPartyReadStore,
			fx.As(new(shared.PartyDirectory)),
		),
	),
)
