package obslog

import (
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// newCore builds stdout and, when configured, an OTEL log-bridge core,
// teeing both when OTEL is enabled and a provider is supplied.
func newCore(cfg Config, otelProvider otellog.LoggerProvider) (zapcore.Core, error) {
	encoder := newEncoder(cfg.Format)
	stdout := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), cfg.Level)

	if !cfg.OTEL.Enabled || otelProvider == nil {
		return stdout, nil
	}

	otelCore := otelzap.NewCore("cosearch", otelzap.WithLoggerProvider(otelProvider))
	return zapcore.NewTee(stdout, otelCore), nil
}

func newEncoder(format string) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "console" {
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}
