package config

import (
	"errors"
	"time"
)

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 50051
	DefaultEnvironment = "dev"
	DefaultLogLevel    = "info"

	DefaultDBDriver  = DriverSQLite
	DefaultDBDSN     = "file::memory:?cache=shared"
	DefaultDBTimeout = 5 * time.Second

	DefaultPoolKind      = PoolKindLocal
	DefaultPoolEngine    = EngineEcho
	DefaultPoolWorkers   = 4
	DefaultPoolQueueSize = 64
	DefaultEngineTimeout = 30 * time.Second

	// Channel capacities for list-like and token-streamed jobs.
	DefaultListCapacity     = 4
	DefaultGenerateCapacity = 1024
	DefaultDispatchTimeout  = 2 * time.Second

	DefaultMQQueueSize = 128
)

var (
	DefaultJobsTopic    = "model-server/jobs/requests"
	DefaultRepliesTopic = "model-server/jobs/replies"
	DefaultReplyPrefix  = DefaultRepliesTopic + "-"
)

var (
	ErrConfigNotLoaded     = errors.New("config not loaded")
	ErrConfigLoaded        = errors.New("config already loaded")
	ErrInvalidPort         = errors.New("port must be between 1 and 65535")
	ErrInvalidDriver       = errors.New("invalid database driver")
	ErrInvalidPoolKind     = errors.New("invalid pool kind")
	ErrInvalidEngine       = errors.New("invalid pool engine")
	ErrEngineAddrNotSet    = errors.New("pool engine address is not set")
	ErrInvalidCapacity     = errors.New("dispatch capacities must be positive")
	ErrInvalidWorkersCount = errors.New("pool workers must be positive")
)

// SetDefaults registers every default with viper so that env vars and
// config files can override them key by key.
func SetDefaults(v viperSetter) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetDefault("db.driver", DefaultDBDriver)
	v.SetDefault("db.dsn", DefaultDBDSN)
	v.SetDefault("db.timeout", DefaultDBTimeout)

	v.SetDefault("pool.kind", DefaultPoolKind)
	v.SetDefault("pool.engine", DefaultPoolEngine)
	v.SetDefault("pool.workers", DefaultPoolWorkers)
	v.SetDefault("pool.queue_size", DefaultPoolQueueSize)
	v.SetDefault("pool.engine_addr", "")
	v.SetDefault("pool.engine_timeout", DefaultEngineTimeout)

	v.SetDefault("dispatch.list_capacity", DefaultListCapacity)
	v.SetDefault("dispatch.generate_capacity", DefaultGenerateCapacity)
	v.SetDefault("dispatch.timeout", DefaultDispatchTimeout)

	v.SetDefault("mq.queue_size", DefaultMQQueueSize)
	v.SetDefault("mq.jobs_topic", DefaultJobsTopic)
	v.SetDefault("pulsar.url", "")
}

type viperSetter interface {
	SetDefault(key string, value any)
}
