package context

import (
	stdctx "context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	providerKey
	runIDKey
)

// WithRequestID stores the correlation id of the inbound request.
func WithRequestID(ctx stdctx.Context, requestID string) stdctx.Context {
	return stdctx.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithSyncRun tags the context with the accounting provider and sync run id.
func WithSyncRun(ctx stdctx.Context, provider, runID string) stdctx.Context {
	ctx = stdctx.WithValue(ctx, providerKey, strings.TrimSpace(provider))
	return stdctx.WithValue(ctx, runIDKey, strings.TrimSpace(runID))
}

// SyncRunFromContext returns the provider and run id set by WithSyncRun.
func SyncRunFromContext(ctx stdctx.Context) (string, string) {
	return stringValue(ctx, providerKey), stringValue(ctx, runIDKey)
}

func stringValue(ctx stdctx.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
