package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plan-it/backend/config"
)

func baseConfig(format string) zap.Config {
	if format == "console" {
		c := zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return c
	}
	c := zap.NewProductionConfig()
	c.EncoderConfig.TimeKey = "ts"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return c
}

// NewLogger 按 log.level / log.format 构建全局 logger，每条日志带 app 字段
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level=%q 不合法: %w", cfg.Level, err)
	}

	zc := baseConfig(cfg.Format)
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build(zap.Fields(zap.String("app", "plan-it")))
	if err != nil {
		return nil, fmt.Errorf("构建 zap logger: %w", err)
	}
	return l, nil
}
