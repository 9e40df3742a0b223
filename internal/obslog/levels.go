package obslog

import "go.uber.org/zap/zapcore"

// TraceLevel is a custom level below Debug for wire-level / byte-level
// detail that is almost always filtered out in normal operation.
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a string into a zapcore.Level, additionally
// accepting "trace".
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
