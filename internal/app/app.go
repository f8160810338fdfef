package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/db"
	"github.com/cozy-creator/model-server/internal/db/drivers"
	"github.com/cozy-creator/model-server/internal/db/repository"
	"github.com/cozy-creator/model-server/internal/dispatch"
	"github.com/cozy-creator/model-server/internal/mq"
	"github.com/cozy-creator/model-server/internal/pool"
	"github.com/cozy-creator/model-server/internal/registry"
	"github.com/cozy-creator/model-server/pkg/logger"
	"github.com/cozy-creator/model-server/pkg/tcpclient"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

type App struct {
	mq         mq.MQ
	db         *bun.DB
	driver     drivers.Driver
	pool       pool.Pool
	engine     pool.Engine
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc
	workers    sync.WaitGroup
	closeOnce  sync.Once

	Logger *zap.Logger

	ModelRepository repository.IModelRepository
	Registry        *registry.Cache
	Gateway         *dispatch.Gateway
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithDB(driver drivers.Driver) OptionFunc {
	return func(app *App) error {
		app.driver = driver
		app.db = driver.GetDB()
		return nil
	}
}

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = logger
		return nil
	}
}

func WithMQ() OptionFunc {
	return func(app *App) error {
		return app.ensureMQ()
	}
}

// WithDBInitialization connects to the configured store, creates the models
// table if needed and builds the registry on top of it.
func WithDBInitialization() OptionFunc {
	return func(app *App) error {
		if app.db == nil {
			driver, err := db.NewConnection(app.ctx, app.config)
			if err != nil {
				return err
			}
			app.driver = driver
			app.db = driver.GetDB()
		}

		if err := db.EnsureSchema(app.ctx, app.db); err != nil {
			return err
		}

		app.ModelRepository = repository.NewModelRepository(app.db)
		store := registry.NewRepositoryStore(app.ModelRepository, app.config.DB.Timeout)
		app.Registry = registry.New(store, registry.WithLogger(app.Logger.Named("registry")))
		return nil
	}
}

// WithPool builds the configured execution pool and the gateway in front of
// it. A remote pool without a broker gets an in-process processor.
func WithPool() OptionFunc {
	return func(app *App) error {
		engine, err := NewEngine(app.ctx, app.config.Pool, app.Logger)
		if err != nil {
			return err
		}
		app.engine = engine

		opts := []pool.Option{pool.WithLogger(app.Logger)}
		switch app.config.Pool.Kind {
		case config.PoolKindRemote:
			if err := app.ensureMQ(); err != nil {
				return err
			}
			app.pool = pool.NewRemote(app.mq, app.config.MQ.JobsTopic, opts...)

			if mq.Type(app.mq) == mq.MQTypeInMemory {
				app.startProcessor(engine)
			}
		default:
			app.pool = pool.NewLocal(engine, app.config.Pool.Workers, app.config.Pool.QueueSize, opts...)
		}

		app.Gateway = dispatch.NewGateway(app.pool, app.config.Dispatch, dispatch.WithLogger(app.Logger))
		app.Logger.Info("execution pool ready",
			zap.String("kind", app.config.Pool.Kind),
			zap.String("engine", app.config.Pool.Engine),
			zap.Int("workers", app.config.Pool.Workers),
		)
		return nil
	}
}

// NewEngine builds the engine named in cfg. A TCP engine that fails its
// health check is still returned; the engine may come up later.
func NewEngine(ctx context.Context, cfg *config.PoolConfig, logger *zap.Logger) (pool.Engine, error) {
	switch cfg.Engine {
	case config.EngineTCP:
		client, err := tcpclient.NewTCPClient(cfg.EngineAddr, cfg.EngineTimeout, cfg.Workers,
			tcpclient.WithLogger(logger.Named("tcpclient")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to engine at %s: %w", cfg.EngineAddr, err)
		}

		engine := pool.NewTCPEngine(client)
		if err := engine.HealthCheck(ctx); err != nil {
			logger.Warn("engine health check failed", zap.String("addr", cfg.EngineAddr), zap.Error(err))
		}
		return engine, nil
	case config.EngineEcho:
		return pool.EchoEngine{}, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrInvalidEngine, cfg.Engine)
}

func (app *App) ensureMQ() error {
	if app.mq != nil {
		return nil
	}

	q, err := mq.NewMQ(app.config, app.Logger)
	if err != nil {
		return err
	}
	app.mq = q
	return nil
}

func (app *App) startProcessor(engine pool.Engine) {
	proc := pool.NewProcessor(app.mq, engine, app.config.MQ.JobsTopic, app.config.Pool.Workers,
		pool.WithLogger(app.Logger),
	)

	app.workers.Add(1)
	go func() {
		defer app.workers.Done()
		if err := proc.Run(app.ctx); err != nil {
			app.Logger.Error("in-process processor stopped", zap.Error(err))
		}
	}()
}

func NewApp(config *config.Config, options ...OptionFunc) (*App, error) {
	logger, err := logger.InitLogger(config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     config,
		Logger:     logger,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			app.Logger.Error("failed to apply option", zap.Error(err))
			app.Close()
			return nil, err
		}
	}

	return app, nil
}

// Close releases everything in reverse order of construction: pool, workers,
// engine, queue, database.
func (app *App) Close() {
	app.closeOnce.Do(func() {
		if app.pool != nil {
			app.pool.Close()
		}

		app.cancelFunc()
		app.workers.Wait()

		if closer, ok := app.engine.(interface{ Close() error }); ok {
			closer.Close()
		}

		if app.mq != nil {
			app.mq.Close()
		}

		if app.driver != nil {
			app.driver.Close()
		}

		if app.Logger != nil {
			app.Logger.Sync()
		}
	})
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) MQ() mq.MQ {
	return app.mq
}

func (app *App) DB() *bun.DB {
	return app.db
}

func (app *App) Pool() pool.Pool {
	return app.pool
}
