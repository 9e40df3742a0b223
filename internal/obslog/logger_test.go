package obslog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_BuildsFromDefaultConfig(t *testing.T) {
	logger, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NotNil(t, logger.zap)
}

func TestNew_RejectsBadFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestLogger_ContextAwareMethods(t *testing.T) {
	core, observed := observer.New(TraceLevel)
	logger := &Logger{zap: zap.New(core)}
	ctx := context.Background()

	tests := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
		message string
	}{
		{"trace", func() { logger.Trace(ctx, "trace message", zap.String("key", "val")) }, TraceLevel, "trace message"},
		{"debug", func() { logger.Debug(ctx, "debug message", zap.String("key", "val")) }, zapcore.DebugLevel, "debug message"},
		{"info", func() { logger.Info(ctx, "info message", zap.String("key", "val")) }, zapcore.InfoLevel, "info message"},
		{"warn", func() { logger.Warn(ctx, "warn message", zap.String("key", "val")) }, zapcore.WarnLevel, "warn message"},
		{"error", func() { logger.Error(ctx, "error message", zap.String("key", "val")) }, zapcore.ErrorLevel, "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.logFunc()
			entries := observed.TakeAll()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, tt.message, entries[0].Message)
		})
	}
}

func TestLogger_WithAddsFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := &Logger{zap: zap.New(core)}

	child := logger.With(zap.String("component", "searchindex"))
	child.Info(context.Background(), "ready")

	entries := observed.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "searchindex", entries[0].ContextMap()["component"])
}

func TestLogger_NamedSetsLoggerName(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := &Logger{zap: zap.New(core)}

	named := logger.Named("query")
	named.Info(context.Background(), "search ran")

	entries := observed.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "query", entries[0].LoggerName)
}

func TestNewNop_DiscardsLogs(t *testing.T) {
	logger := NewNop()
	require.NotNil(t, logger)
	logger.Info(context.Background(), "should not panic")
}

func TestContextWithLoggerRoundTrips(t *testing.T) {
	logger := NewNop()
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	got := FromContext(context.Background())
	require.NotNil(t, got)
}
