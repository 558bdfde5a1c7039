// Package requestctx holds per-request values shared by the platform packages: the scoped zap
// logger, trace ids and the throttling key of the caller.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	traceKey  struct{}
	clientKey struct{}
)

var nop = zap.NewNop()

// TraceInfo identifies the Cloud Trace span serving the request.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = nop
	}
	return context.WithValue(orBackground(ctx), loggerKey{}, logger)
}

// Logger returns the request logger, or NoopLogger when none was stored.
func Logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return nop
}

// NoopLogger is the shared fallback so callers can tell "no logger" apart by identity.
func NoopLogger() *zap.Logger { return nop }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return context.WithValue(orBackground(ctx), traceKey{}, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceKey{}).(TraceInfo)
	return info, ok
}

// TraceID is empty outside a traced request.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithClientKey records who is calling for rate limiting and idempotency scoping:
// "uid:<id>" for signed-in cooks and "ip:<addr>" for everyone else.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(orBackground(ctx), clientKey{}, key)
}

func ClientKey(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	key, _ := ctx.Value(clientKey{}).(string)
	return key
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
