// Package loggertest provides a logger that records entries for assertions.
package loggertest

import (
	"go.uber.org/zap/zaptest/observer"
	"pantry/internal/logger"
)

// New records every entry, trace included.
func New() (*logger.Logger, *observer.ObservedLogs) {
	core, observed := observer.New(logger.ZapTraceLevel)
	return logger.FromCore(core), observed
}
