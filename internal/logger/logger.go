package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	sugar *zap.SugaredLogger
}

func (l *Logger) Trace(v ...any) {
	l.sugar.Log(traceLevel, v...)
}

func (l *Logger) Debug(v ...any) {
	l.sugar.Debugln(v...)
}

func (l *Logger) Info(v ...any) {
	l.sugar.Infoln(v...)
}

func (l *Logger) Warn(v ...any) {
	l.sugar.Warnln(v...)
}

func (l *Logger) Error(v ...any) {
	l.sugar.Errorln(v...)
}

func (l *Logger) Tracef(format string, v ...any) {
	l.sugar.Logf(traceLevel, format, v...)
}

func (l *Logger) Debugf(format string, v ...any) {
	l.sugar.Debugf(format, v...)
}

func (l *Logger) Infof(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.sugar.Warnf(format, v...)
}

func (l *Logger) Errorf(format string, v ...any) {
	l.sugar.Errorf(format, v...)
}

// Sync flushes buffered entries, call it before exiting.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func NewLogger(level Level, output io.Writer) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(output),
		zap.NewAtomicLevelAt(level.zapLevel()),
	)
	return &Logger{sugar: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// FromCore wraps an existing zap core.
func FromCore(core zapcore.Core) *Logger {
	return &Logger{sugar: zap.New(core).Sugar()}
}
