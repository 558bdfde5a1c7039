package observability

import (
	"encoding/binary"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/homechef/api/internal/platform/requestctx"
)

// Cloud Run forwards the load balancer trace as TRACE_ID/SPAN_ID;o=OPTIONS.
const cloudTraceHeader = "X-Cloud-Trace-Context"

var tracer = otel.Tracer(metricNamespace + "/http")

// TraceMiddleware starts a server span per request, continuing an inbound Cloud Trace context
// when present. The trace ids land on the request context for logs and error payloads, and the
// effective context is echoed back in the response header.
func TraceMiddleware(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			inbound, hasInbound := parseCloudTrace(r.Header.Get(cloudTraceHeader))
			if hasInbound {
				ctx = trace.ContextWithRemoteSpanContext(ctx, inbound.spanContext())
			}

			ctx, span := tracer.Start(ctx, r.Method+" "+requestPath(r),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r)...),
			)
			defer span.End()

			current := inbound
			if sc := span.SpanContext(); sc.IsValid() {
				current = cloudTrace{traceID: sc.TraceID(), spanID: sc.SpanID(), sampled: sc.IsSampled()}
			}
			if current.valid() {
				w.Header().Set(cloudTraceHeader, current.String())
				ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{
					TraceID:   current.traceID.String(),
					SpanID:    current.spanID.String(),
					Sampled:   current.sampled,
					ProjectID: projectID,
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type cloudTrace struct {
	traceID trace.TraceID
	spanID  trace.SpanID
	sampled bool
}

func (c cloudTrace) valid() bool { return c.traceID.IsValid() && c.spanID.IsValid() }

func (c cloudTrace) String() string {
	opt := "0"
	if c.sampled {
		opt = "1"
	}
	return c.traceID.String() + "/" + c.spanID.String() + ";o=" + opt
}

func (c cloudTrace) spanContext() trace.SpanContext {
	var flags trace.TraceFlags
	if c.sampled {
		flags = trace.FlagsSampled
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    c.traceID,
		SpanID:     c.spanID,
		TraceFlags: flags,
		Remote:     true,
	})
}

// parseCloudTrace reads the header value. The span part is decimal per the Cloud Trace format,
// though hex values of up to 16 digits are accepted from older proxies.
func parseCloudTrace(value string) (cloudTrace, bool) {
	traceHex, rest, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok || len(traceHex) != 32 {
		return cloudTrace{}, false
	}
	traceID, err := trace.TraceIDFromHex(strings.ToLower(traceHex))
	if err != nil {
		return cloudTrace{}, false
	}
	spanPart, options, _ := strings.Cut(rest, ";")
	spanID, ok := parseSpanID(strings.TrimSpace(spanPart))
	if !ok {
		return cloudTrace{}, false
	}
	out := cloudTrace{traceID: traceID, spanID: spanID}
	for _, opt := range strings.Split(options, ";") {
		if v, found := strings.CutPrefix(strings.TrimSpace(opt), "o="); found {
			out.sampled = v == "1"
		}
	}
	return out, true
}

func parseSpanID(value string) (trace.SpanID, bool) {
	var id trace.SpanID
	if n, err := strconv.ParseUint(value, 10, 64); err == nil {
		binary.BigEndian.PutUint64(id[:], n)
		return id, id.IsValid()
	}
	if value == "" || len(value) > 16 {
		return id, false
	}
	n, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return id, false
	}
	binary.BigEndian.PutUint64(id[:], n)
	return id, id.IsValid()
}

func requestPath(r *http.Request) string {
	if r.URL == nil || r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.scheme", scheme),
		attribute.String("url.path", requestPath(r)),
	}
	if r.Host != "" {
		attrs = append(attrs, attribute.String("server.address", r.Host))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", scrub(ua, 200)))
	}
	return attrs
}
