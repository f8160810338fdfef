package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverPG     = "pg"
	DriverLibSQL = "libsql"
)

const (
	PoolKindLocal  = "local"
	PoolKindRemote = "remote"
)

const (
	EngineEcho = "echo"
	EngineTCP  = "tcp"
)

const EnvPrefix = "MODELSERVER"

type Config struct {
	Host        string          `mapstructure:"host"`
	Port        int             `mapstructure:"port"`
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	DB          *DBConfig       `mapstructure:"db"`
	Pool        *PoolConfig     `mapstructure:"pool"`
	Dispatch    *DispatchConfig `mapstructure:"dispatch"`
	MQ          *MQConfig       `mapstructure:"mq"`
	Pulsar      *PulsarConfig   `mapstructure:"pulsar"`
}

type DBConfig struct {
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PoolConfig struct {
	Kind          string        `mapstructure:"kind"`
	Engine        string        `mapstructure:"engine"`
	Workers       int           `mapstructure:"workers"`
	QueueSize     int           `mapstructure:"queue_size"`
	EngineAddr    string        `mapstructure:"engine_addr"`
	EngineTimeout time.Duration `mapstructure:"engine_timeout"`
}

type DispatchConfig struct {
	ListCapacity     int           `mapstructure:"list_capacity"`
	GenerateCapacity int           `mapstructure:"generate_capacity"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type MQConfig struct {
	QueueSize int    `mapstructure:"queue_size"`
	JobsTopic string `mapstructure:"jobs_topic"`
}

type PulsarConfig struct {
	URL string `mapstructure:"url"`
}

var config *Config

// LoadEnvAndConfigFiles loads the optional env file and config file named by
// the `env_file` and `config_file` keys, then unmarshals the merged settings.
func LoadEnvAndConfigFiles() error {
	if envFile := viper.GetString("env_file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	if configFile := viper.GetString("config_file"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	return LoadConfig(true)
}

// BindEnvs wires the nested keys to their env names. The log level may also
// come from LOG_LEVEL, which wins over the prefixed name and the config file.
func BindEnvs() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(`-`, `_`, `.`, `_`))
	viper.AutomaticEnv()

	viper.BindEnv("log_level", "LOG_LEVEL", EnvPrefix+"_LOG_LEVEL")

	viper.BindEnv("db.driver")
	viper.BindEnv("db.dsn")
	viper.BindEnv("db.timeout")

	viper.BindEnv("pool.kind")
	viper.BindEnv("pool.engine")
	viper.BindEnv("pool.workers")
	viper.BindEnv("pool.queue_size")
	viper.BindEnv("pool.engine_addr")
	viper.BindEnv("pool.engine_timeout")

	viper.BindEnv("dispatch.list_capacity")
	viper.BindEnv("dispatch.generate_capacity")
	viper.BindEnv("dispatch.timeout")

	viper.BindEnv("mq.queue_size")
	viper.BindEnv("mq.jobs_topic")
	viper.BindEnv("pulsar.url")
}

func LoadConfig(reload bool) error {
	if config != nil && !reload {
		return ErrConfigLoaded
	}

	SetDefaults(viper.GetViper())

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	config = cfg
	return nil
}

func GetConfig() (*Config, error) {
	if config == nil {
		return nil, ErrConfigNotLoaded
	}

	return config, nil
}

func MustGetConfig() *Config {
	if config == nil {
		panic(ErrConfigNotLoaded)
	}

	return config
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidPort
	}

	if c.DB == nil {
		c.DB = &DBConfig{Driver: DefaultDBDriver, DSN: DefaultDBDSN, Timeout: DefaultDBTimeout}
	}
	switch c.DB.Driver {
	case DriverSQLite, DriverPG, DriverLibSQL:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.DB.Driver)
	}

	if c.Pool == nil {
		c.Pool = &PoolConfig{Kind: DefaultPoolKind, Engine: DefaultPoolEngine, Workers: DefaultPoolWorkers, QueueSize: DefaultPoolQueueSize}
	}
	switch c.Pool.Kind {
	case PoolKindLocal, PoolKindRemote:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPoolKind, c.Pool.Kind)
	}
	switch c.Pool.Engine {
	case EngineEcho:
	case EngineTCP:
		if c.Pool.EngineAddr == "" {
			return ErrEngineAddrNotSet
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEngine, c.Pool.Engine)
	}
	if c.Pool.Workers <= 0 {
		return ErrInvalidWorkersCount
	}

	if c.Dispatch == nil {
		c.Dispatch = &DispatchConfig{ListCapacity: DefaultListCapacity, GenerateCapacity: DefaultGenerateCapacity, Timeout: DefaultDispatchTimeout}
	}
	if c.Dispatch.ListCapacity <= 0 || c.Dispatch.GenerateCapacity <= 0 {
		return ErrInvalidCapacity
	}

	if c.MQ == nil {
		c.MQ = &MQConfig{QueueSize: DefaultMQQueueSize, JobsTopic: DefaultJobsTopic}
	}

	return nil
}

// PulsarEnabled reports whether a broker URL was configured.
func (c *Config) PulsarEnabled() bool {
	return c.Pulsar != nil && c.Pulsar.URL != ""
}
