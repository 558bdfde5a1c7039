package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/homechef/api/internal/platform/requestctx"
)

const serviceName = "homechef-api"

type loggerSettings struct {
	level   zapcore.Level
	console bool
	out     io.Writer
}

// LoggerOption overrides the LOG_LEVEL and LOG_FORMAT environment defaults.
type LoggerOption func(*loggerSettings)

// WithLogLevel accepts zap level names; unknown names keep the current level.
func WithLogLevel(name string) LoggerOption {
	return func(s *loggerSettings) {
		if lvl, err := zapcore.ParseLevel(strings.TrimSpace(name)); err == nil {
			s.level = lvl
		}
	}
}

func WithConsoleFormat(enabled bool) LoggerOption {
	return func(s *loggerSettings) { s.console = enabled }
}

func WithLogOutput(w io.Writer) LoggerOption {
	return func(s *loggerSettings) {
		if w != nil {
			s.out = w
		}
	}
}

// NewLogger writes JSON lines in the Cloud Logging layout (severity, message, timestamp) to
// stdout unless WithLogOutput says otherwise.
func NewLogger(opts ...LoggerOption) (*zap.Logger, error) {
	settings := loggerSettings{level: zapcore.InfoLevel, out: os.Stdout}
	WithLogLevel(os.Getenv("LOG_LEVEL"))(&settings)
	WithConsoleFormat(strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "console"))(&settings)
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	enc := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		MessageKey:     "message",
		CallerKey:      "caller",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewJSONEncoder(enc)
	if settings.console {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(enc)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(settings.out)), settings.level)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))).
		With(zap.String("service", serviceName)), nil
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return requestctx.WithLogger(ctx, logger)
}

func FromContext(ctx context.Context) *zap.Logger {
	return requestctx.Logger(ctx)
}

// ServiceLogger adapts a zap logger to the event hooks services accept. An error value under
// the "error" key raises the entry to warn.
func ServiceLogger(base *zap.Logger, component string) func(ctx context.Context, event string, fields map[string]any) {
	if base == nil {
		base = zap.NewNop()
	}
	tag := zap.String("component", component)
	return func(ctx context.Context, event string, fields map[string]any) {
		logger := requestctx.Logger(ctx)
		if logger == requestctx.NoopLogger() {
			logger = base
		}
		level := zapcore.InfoLevel
		zfields := make([]zap.Field, 0, len(fields)+1)
		zfields = append(zfields, tag)
		for key, value := range fields {
			if err, ok := value.(error); ok && key == "error" {
				level = zapcore.WarnLevel
				zfields = append(zfields, zap.Error(err))
				continue
			}
			zfields = append(zfields, zap.Any(key, value))
		}
		if ce := logger.Check(level, event); ce != nil {
			ce.Write(zfields...)
		}
	}
}

// scrub drops control characters other than tab and keeps at most limit runes, so request
// supplied values cannot forge log lines.
func scrub(value string, limit int) string {
	var b strings.Builder
	n := 0
	for _, r := range value {
		if n == limit {
			break
		}
		if unicode.IsControl(r) && r != '\t' {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

func routeField(key, route string) zap.Field {
	if route == "" {
		route = "/"
	}
	return zap.String(key, scrub(route, 180))
}
