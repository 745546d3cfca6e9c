package bootstrap

import (
	"context"

	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
		func(pool *pgxpool.Pool) db.DBTX { return pool },
	),
)

// NewDB connects at construction so a bad DSN fails startup instead of the first request.
func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, closePool, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(closePool))
	return pool, nil
}
