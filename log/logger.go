package log

import "context"

// Fields collects the key/value pairs attached to a log line
type Fields interface {
	Add(key string, value interface{})
}

// Loggable is implemented by types that know how to describe
// themselves in a log line
type Loggable interface {
	Log(fields Fields)
}

// MapFields is the simplest Loggable, a set of fields
type MapFields map[string]interface{}

// Log implementation of Loggable for MapFields
func (m MapFields) Log(fields Fields) {
	for key, value := range m {
		fields.Add(key, value)
	}
}

// Logger is the logging facade used across the module
type Logger interface {
	ForClass(pkg string, class string) Logger
	Debug(ctx context.Context, msg string, loggable ...Loggable)
	Info(ctx context.Context, msg string, loggable ...Loggable)
	Warn(ctx context.Context, msg string, loggable ...Loggable)
	Error(ctx context.Context, msg string, loggable ...Loggable)
	Fatal(ctx context.Context, msg string, loggable ...Loggable)
}
