package obslog

import "context"

type loggerCtxKey struct{}

// WithLogger stores a Logger in ctx for code that only receives a
// context.Context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves the Logger stored by WithLogger, falling back to
// a nop logger so callers never need a nil check.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
