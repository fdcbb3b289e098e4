package log

import (
	"io/ioutil"

	"github.com/sirupsen/logrus"
)

// New creates a new logger with the specified
// configuration
func New(config *Config) Logger {
	return NewLogrus(LogrusLoggerProperties{
		Level: ParseLevel(config.Level),
	})
}

// NewDiscard creates a logger that drops every line. It is
// meant for tests and for components created without a logger
func NewDiscard() Logger {
	return NewLogrus(LogrusLoggerProperties{
		Level:  logrus.PanicLevel,
		Output: ioutil.Discard,
	})
}

// ParseLevel maps a configured level name to a logrus level,
// falling back to debug for unknown names
func ParseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.DebugLevel
	}
}
