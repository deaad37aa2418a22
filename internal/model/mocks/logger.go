package mocks

import "github.com/ooni/tcpprobe/internal/model"

// Logger allows mocking a logger.
type Logger struct {
	MockDebug func(message string)

	MockDebugf func(format string, v ...interface{})

	MockInfo func(message string)

	MockInfof func(format string, v ...interface{})

	MockWarn func(message string)

	MockWarnf func(format string, v ...interface{})

	MockError func(message string)

	MockErrorf func(format string, v ...interface{})
}

var _ model.Logger = &Logger{}

// Debug calls MockDebug.
func (lo *Logger) Debug(message string) {
	lo.MockDebug(message)
}

// Debugf calls MockDebugf.
func (lo *Logger) Debugf(format string, v ...interface{}) {
	lo.MockDebugf(format, v...)
}

// Info calls MockInfo.
func (lo *Logger) Info(message string) {
	lo.MockInfo(message)
}

// Infof calls MockInfof.
func (lo *Logger) Infof(format string, v ...interface{}) {
	lo.MockInfof(format, v...)
}

// Warn calls MockWarn.
func (lo *Logger) Warn(message string) {
	lo.MockWarn(message)
}

// Warnf calls MockWarnf.
func (lo *Logger) Warnf(format string, v ...interface{}) {
	lo.MockWarnf(format, v...)
}

// Error calls MockError.
func (lo *Logger) Error(message string) {
	lo.MockError(message)
}

// Errorf calls MockErrorf.
func (lo *Logger) Errorf(format string, v ...interface{}) {
	lo.MockErrorf(format, v...)
}

// LoggerFactory allows mocking a [model.LoggerFactory].
type LoggerFactory struct {
	MockNewLogger func(channel string) model.Logger
}

var _ model.LoggerFactory = &LoggerFactory{}

// NewLogger calls MockNewLogger.
func (lf *LoggerFactory) NewLogger(channel string) model.Logger {
	return lf.MockNewLogger(channel)
}
