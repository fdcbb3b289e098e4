package log

import (
	"context"
)

type ContextKey string

const (
	ContextKeyTraceID ContextKey = "logContextKeyTraceID"
)

// PutTraceID attaches the trace id to the context so that every
// line logged with it can be correlated
func PutTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ContextKeyTraceID, traceID)
}

// GetTraceID returns the trace id attached to the context or
// an empty string if there is none
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(ContextKeyTraceID).(string)
	if !ok {
		return ""
	}

	return traceID
}

// HasTraceID returns true if the context already carries a trace id
func HasTraceID(ctx context.Context) bool {
	return len(GetTraceID(ctx)) > 0
}
