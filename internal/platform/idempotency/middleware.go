package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/homechef/api/internal/platform/auth"
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/platform/requestctx"
)

const (
	defaultHeaderName = "Idempotency-Key"
	replayHeaderName  = "X-Idempotent-Replay"
	anonymousCaller   = "anonymous"
)

// Logger receives structured events for persistence failures.
type Logger func(ctx context.Context, event string, fields map[string]any)

// MiddlewareOption customises Middleware.
type MiddlewareOption func(*guard)

// WithHeader reads the key from name instead of Idempotency-Key.
func WithHeader(name string) MiddlewareOption {
	return func(g *guard) {
		if name = strings.TrimSpace(name); name != "" {
			g.header = name
		}
	}
}

// WithTTL sets how long keys and replayable responses are retained.
func WithTTL(ttl time.Duration) MiddlewareOption {
	return func(g *guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithLogger receives store failures.
func WithLogger(logger Logger) MiddlewareOption {
	return func(g *guard) {
		if logger != nil {
			g.log = logger
		}
	}
}

// WithOptionalKey serves requests without the header unguarded instead of rejecting them.
func WithOptionalKey() MiddlewareOption {
	return func(g *guard) { g.optional = true }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) MiddlewareOption {
	return func(g *guard) {
		if clock != nil {
			g.now = clock
		}
	}
}

type guard struct {
	store    Store
	header   string
	ttl      time.Duration
	optional bool
	now      func() time.Time
	log      Logger
}

// Middleware deduplicates POST requests carrying an idempotency key. The first request runs the
// handler and its response is stored; retries with the same key and body replay it, a retry
// while the first is still running gets 409, and the same key with a different body is
// rejected. Keys are scoped to the authenticated user or, failing that, the client key.
func Middleware(store Store, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	g := &guard{
		store:  store,
		header: defaultHeaderName,
		ttl:    DefaultTTL,
		now:    time.Now,
		log:    func(context.Context, string, map[string]any) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			g.serve(w, r, next)
		})
	}
}

func (g *guard) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()
	key := strings.TrimSpace(r.Header.Get(g.header))
	if key == "" {
		if g.optional {
			next.ServeHTTP(w, r)
			return
		}
		fail(ctx, w, http.StatusBadRequest, "idempotency_key_required", "missing "+g.header+" header")
		return
	}

	body, err := bufferBody(r)
	if err != nil {
		fail(ctx, w, http.StatusBadRequest, "invalid_body", "unable to read request body")
		return
	}

	caller := requester(ctx)
	storeKey := scopedKey(key, caller)
	fingerprint := requestFingerprint(r, body, caller)

	res, err := g.store.Reserve(ctx, storeKey, fingerprint, g.now().UTC(), g.ttl)
	switch {
	case errors.Is(err, ErrFingerprintMismatch):
		fail(ctx, w, http.StatusConflict, "idempotency_key_conflict", "idempotency key already used for a different request")
		return
	case err != nil:
		g.log(ctx, "idempotency.store_error", map[string]any{"key": key, "error": err})
		fail(ctx, w, http.StatusInternalServerError, "idempotency_store_error", "unable to process idempotency key")
		return
	}

	switch res.State {
	case ReservationStateCompleted:
		replay(w, res.Record)
		return
	case ReservationStatePending:
		fail(ctx, w, http.StatusConflict, "idempotency_in_progress", "another request is processing this idempotency key")
		return
	}

	buf := &bufferedResponse{header: make(http.Header)}
	next.ServeHTTP(buf, r)

	saved := Response{Status: buf.statusCode(), Headers: buf.header.Clone(), Body: buf.body.Bytes()}
	if err := g.store.SaveResponse(ctx, storeKey, fingerprint, saved, g.now().UTC(), g.ttl); err != nil {
		g.log(ctx, "idempotency.save_failed", map[string]any{"key": key, "requester": caller, "error": err})
		if err := g.store.Release(ctx, storeKey, fingerprint); err != nil {
			g.log(ctx, "idempotency.release_failed", map[string]any{"key": key, "error": err})
		}
		fail(ctx, w, http.StatusInternalServerError, "idempotency_store_error", "unable to persist idempotent response")
		return
	}
	buf.flushTo(w)
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func requester(ctx context.Context) string {
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		if key := identity.ClientKey(); key != "" {
			return key
		}
	}
	if key := requestctx.ClientKey(ctx); key != "" {
		return key
	}
	return anonymousCaller
}

func scopedKey(key, caller string) string {
	if caller = strings.TrimSpace(caller); caller == "" {
		caller = anonymousCaller
	}
	return caller + "/" + strings.TrimSpace(key)
}

// requestFingerprint binds a key to the route, caller and exact body.
func requestFingerprint(r *http.Request, body []byte, caller string) string {
	h := sha256.New()
	for _, part := range []string{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("Content-Type"), caller} {
		_, _ = io.WriteString(h, part)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func replay(w http.ResponseWriter, record Record) {
	header := w.Header()
	for name, values := range headersFromRecord(record.ResponseHeaders) {
		header[name] = values
	}
	header.Set(replayHeaderName, "true")
	status := record.ResponseStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(record.ResponseBody)
}

func fail(ctx context.Context, w http.ResponseWriter, status int, code, message string) {
	httpx.WriteError(ctx, w, httpx.NewError(code, message, status))
}

// bufferedResponse holds the handler output until it has been stored.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) statusCode() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	header := w.Header()
	for name, values := range b.header {
		header[name] = values
	}
	w.WriteHeader(b.statusCode())
	_, _ = w.Write(b.body.Bytes())
}
