package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cozy-creator/model-server/internal/app"
	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gRPC model server",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", config.DefaultPort, "Port to run the server on")
	flags.String("host", config.DefaultHost, "Host to run the server on")
	flags.String("environment", config.DefaultEnvironment, "Environment configuration: dev, test or prod")

	flags.String("db-driver", config.DefaultDBDriver, "Database driver: sqlite, pg or libsql")
	flags.String("db-dsn", config.DefaultDBDSN, "Database DSN (Connection URL or Path)")

	flags.String("pool-kind", config.DefaultPoolKind, "Execution pool: local or remote")
	flags.String("pool-engine", config.DefaultPoolEngine, "Inference engine: echo or tcp")
	flags.Int("pool-workers", config.DefaultPoolWorkers, "Number of concurrent jobs")
	flags.String("engine-addr", "", "Address of the TCP inference engine")
	flags.String("pulsar-url", "", "URL of the pulsar broker. Example: pulsar://localhost:6650")

	config.KeyFlag(flags, "port", "port")
	config.KeyFlag(flags, "host", "host")
	config.KeyFlag(flags, "environment", "environment")
	config.KeyFlag(flags, "db-driver", "db.driver")
	config.KeyFlag(flags, "db-dsn", "db.dsn")
	config.KeyFlag(flags, "pool-kind", "pool.kind")
	config.KeyFlag(flags, "pool-engine", "pool.engine")
	config.KeyFlag(flags, "pool-workers", "pool.workers")
	config.KeyFlag(flags, "engine-addr", "pool.engine_addr")
	config.KeyFlag(flags, "pulsar-url", "pulsar.url")
}

func runApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	application, err := app.NewApp(cfg, app.WithDBInitialization(), app.WithPool())
	if err != nil {
		return err
	}
	defer application.Close()

	logger := application.Logger
	srv := server.NewServer(cfg, application.Registry, application.Gateway,
		server.WithLogger(logger.Named("server")),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start(application.Context())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}

	return <-errc
}
