package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvProduction = "production"

// New builds a JSON SugaredLogger. Production uses info level and sampling,
// every other environment logs at debug level.
func New(appEnv string) (*zap.SugaredLogger, error) {
	var config zap.Config
	if appEnv == EnvProduction {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Encoding = "json"

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar().With("env", appEnv), nil
}

// Nop returns a logger that discards everything. Used as the default of
// components constructed without a logger.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
