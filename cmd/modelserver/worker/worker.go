package worker

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/cozy-creator/model-server/internal/app"
	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/pool"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ErrBrokerRequired = errors.New("worker requires a pulsar broker (--pulsar-url)")

var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume jobs from the broker and run them on an inference engine",
	RunE:  runWorker,
}

func init() {
	flags := Cmd.Flags()

	flags.String("pool-engine", config.DefaultPoolEngine, "Inference engine: echo or tcp")
	flags.Int("pool-workers", config.DefaultPoolWorkers, "Number of concurrent jobs")
	flags.String("engine-addr", "", "Address of the TCP inference engine")
	flags.String("pulsar-url", "", "URL of the pulsar broker. Example: pulsar://localhost:6650")
	flags.String("jobs-topic", config.DefaultJobsTopic, "Topic to consume jobs from")

	config.KeyFlag(flags, "pool-engine", "pool.engine")
	config.KeyFlag(flags, "pool-workers", "pool.workers")
	config.KeyFlag(flags, "engine-addr", "pool.engine_addr")
	config.KeyFlag(flags, "pulsar-url", "pulsar.url")
	config.KeyFlag(flags, "jobs-topic", "mq.jobs_topic")
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if !cfg.PulsarEnabled() {
		return ErrBrokerRequired
	}

	application, err := app.NewApp(cfg, app.WithMQ())
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := app.NewEngine(ctx, cfg.Pool, application.Logger)
	if err != nil {
		return err
	}
	if closer, ok := engine.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	application.Logger.Info("worker starting",
		zap.String("topic", cfg.MQ.JobsTopic),
		zap.String("engine", cfg.Pool.Engine),
		zap.Int("workers", cfg.Pool.Workers),
	)

	proc := pool.NewProcessor(application.MQ(), engine, cfg.MQ.JobsTopic, cfg.Pool.Workers,
		pool.WithLogger(application.Logger),
	)
	return proc.Run(ctx)
}
