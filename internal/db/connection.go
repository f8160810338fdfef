package db

import (
	"context"
	"fmt"

	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/db/drivers"
	"github.com/cozy-creator/model-server/internal/db/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

// NewConnection opens the configured store and attaches the bundebug query
// hook, which stays silent unless BUNDEBUG is set in the environment.
func NewConnection(ctx context.Context, cfg *config.Config) (drivers.Driver, error) {
	driver, err := openDriver(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	driver.GetDB().AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv(),
	))

	pingCtx := ctx
	if cfg.DB.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DB.Timeout)
		defer cancel()
	}

	if err := driver.GetDB().PingContext(pingCtx); err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", cfg.DB.Driver, err)
	}

	return driver, nil
}

func openDriver(ctx context.Context, cfg *config.DBConfig) (drivers.Driver, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return drivers.NewSQLiteDriver(ctx, cfg.DSN)
	case config.DriverLibSQL:
		return drivers.NewLibSQLDriver(ctx, cfg.DSN)
	case config.DriverPG:
		return drivers.NewPGDriver(ctx, cfg.DSN, cfg.Timeout)
	}

	return nil, fmt.Errorf("invalid database driver: %s", cfg.Driver)
}

// EnsureSchema creates the tables the server reads from if they are missing.
// Migrations remain the way to evolve an existing schema.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		tables := []interface{}{
			(*models.ModelSpec)(nil),
		}

		for _, table := range tables {
			if _, err := tx.NewCreateTable().
				Model(table).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table: %w", err)
			}
		}
		return nil
	})
}
