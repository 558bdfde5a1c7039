package observability

import (
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/homechef/api/internal/platform/auth"
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/platform/requestctx"
)

// Probe paths hit by Cloud Run every few seconds.
var probePaths = map[string]bool{"/healthz": true, "/readyz": true}

// InjectLoggerMiddleware makes logger the request logger for everything downstream.
func InjectLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestctx.WithLogger(r.Context(), logger)))
		})
	}
}

// RequestLoggerMiddleware scopes the context logger to the request and logs its outcome. Probe
// traffic is logged once at debug level; other requests log a start line and a completion line
// whose level follows the status code.
func RequestLoggerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := requestLogger(r)
			probe := probePaths[r.URL.Path]
			if !probe {
				logger.Info("request started")
			}

			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			panicked := true
			defer func() {
				status := sw.statusCode()
				if panicked && status < http.StatusInternalServerError {
					status = http.StatusInternalServerError
				}
				annotateSpan(trace.SpanFromContext(ctx), r, status)

				level := completionLevel(status, probe)
				if ce := logger.Check(level, "request completed"); ce != nil {
					ce.Write(
						zap.Int("status", status),
						zap.Duration("latency", time.Since(start)),
						zap.Int64("bytes", sw.written),
					)
				}
			}()

			next.ServeHTTP(sw, r.WithContext(requestctx.WithLogger(ctx, logger)))
			panicked = false
		})
	}
}

func requestLogger(r *http.Request) *zap.Logger {
	ctx := r.Context()
	info, _ := requestctx.Trace(ctx)
	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(ctx)),
		zap.String("method", scrub(r.Method, 10)),
		routeField("path", r.URL.Path),
		zap.String("trace_id", info.TraceID),
	}
	if identity, ok := auth.IdentityFromContext(ctx); ok && identity != nil {
		fields = append(fields, zap.String("user_id", scrub(identity.UID, 64)))
	}
	if info.ProjectID != "" && info.TraceID != "" {
		fields = append(fields, zap.String("logging.googleapis.com/trace", "projects/"+info.ProjectID+"/traces/"+info.TraceID))
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		fields = append(fields, zap.String("remote_ip", scrub(host, 64)))
	}
	return requestctx.Logger(ctx).With(fields...)
}

func completionLevel(status int, probe bool) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case probe:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// annotateSpan names the span after the matched chi route once routing is done.
func annotateSpan(span trace.Span, r *http.Request, status int) {
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(semconv.HTTPResponseStatusCode(status))
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			span.SetName(r.Method + " " + pattern)
			span.SetAttributes(semconv.HTTPRoute(scrub(pattern, 180)))
		}
	}
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// RecoveryMiddleware turns a panic into a logged stack trace and a 500 JSON error.
func RecoveryMiddleware(fallback *zap.Logger) func(http.Handler) http.Handler {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger := requestctx.Logger(r.Context())
				if logger == requestctx.NoopLogger() {
					logger = fallback
				}
				logger.Error("panic recovered", zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
				httpx.WriteError(r.Context(), w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *statusWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
