package drivers

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PGDriver struct {
	db *bun.DB
}

func NewPGDriver(ctx context.Context, dsn string, timeout time.Duration) (*PGDriver, error) {
	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if timeout > 0 {
		opts = append(opts, pgdriver.WithTimeout(timeout))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	return &PGDriver{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (d *PGDriver) GetDB() *bun.DB {
	return d.db
}

func (d *PGDriver) Close() error {
	return d.db.Close()
}
