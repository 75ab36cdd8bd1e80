package logger

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelOff Level = iota
	LevelFatal
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// ZapTraceLevel is the zap level trace entries are written at. zap has no
// trace level, it sits one step below debug.
const ZapTraceLevel = zapcore.DebugLevel - 1

const traceLevel = ZapTraceLevel

var levelMap = map[string]Level{
	"OFF":   LevelOff,
	"FATAL": LevelFatal,
	"ERROR": LevelError,
	"WARN":  LevelWarn,
	"INFO":  LevelInfo,
	"DEBUG": LevelDebug,
	"TRACE": LevelTrace,
}

func ParseLevel(s string) (Level, error) {
	level, ok := levelMap[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return -1, errors.Errorf("invalid level: %s", s)
	}
	return level, nil
}

func (l Level) String() string {
	for name, level := range levelMap {
		if level == l {
			return name
		}
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelFatal:
		return zapcore.FatalLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelTrace:
		return traceLevel
	default:
		return zapcore.FatalLevel + 1
	}
}
