package logger

import (
	"fmt"
	"strings"

	"github.com/cozy-creator/model-server/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// NewLogger builds a zap logger for the configured environment. Production
// logs are JSON, everything else uses the console encoder.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var zcfg zap.Config
	switch cfg.Environment {
	case "prod":
		zcfg = zap.NewProductionConfig()
	case "test":
		return zap.NewExample(zap.IncreaseLevel(level)), nil
	default:
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build(zap.Fields(zap.String("service", "model-server")))
}

// ParseLevel maps a textual level onto zap. An empty level means info.
func ParseLevel(text string) (zapcore.Level, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return zapcore.InfoLevel, nil
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", text, err)
	}

	return level, nil
}

func MustNewLogger(cfg *config.Config) *zap.Logger {
	return zap.Must(NewLogger(cfg))
}

func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	logger = l
	zap.ReplaceGlobals(l)
	return logger, nil
}

// GetLogger returns the process logger, or a no-op logger if InitLogger has
// not run yet.
func GetLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
