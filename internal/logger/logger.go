package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"coinctl/internal/config"
)

// NewLogger creates the operator-facing zap logger. Unknown levels fall back to info with a warning.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stdout))
}

func newLogger(cfg config.LoggerConfig, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	logLevel := zap.NewAtomicLevel()
	levelErr := logLevel.UnmarshalText([]byte(cfg.Level))
	if levelErr != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	logger := zap.New(
		zapcore.NewCore(encoder, sink, logLevel),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).Named("coinctl")

	if levelErr != nil {
		logger.Warn("Failed to parse log level, defaulting to info",
			zap.String("level", cfg.Level), zap.Error(levelErr))
	}

	return logger, nil
}
