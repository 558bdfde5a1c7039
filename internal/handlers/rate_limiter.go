package handlers

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/homechef/api/internal/platform/auth"
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/platform/requestctx"
)

const defaultLimiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter applies a token bucket per caller key.
type ClientRateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	clock   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastPrune time.Time
}

// RateLimiterOption customises a ClientRateLimiter.
type RateLimiterOption func(*ClientRateLimiter)

// WithRateLimiterClock overrides the time source.
func WithRateLimiterClock(clock func() time.Time) RateLimiterOption {
	return func(l *ClientRateLimiter) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithRateLimiterIdleTTL controls how long an unused client bucket is retained.
func WithRateLimiterIdleTTL(ttl time.Duration) RateLimiterOption {
	return func(l *ClientRateLimiter) {
		if ttl > 0 {
			l.idleTTL = ttl
		}
	}
}

// NewClientRateLimiter allows perMinute requests per caller with a burst of the same size.
// It returns nil when perMinute is not positive; a nil limiter allows everything.
func NewClientRateLimiter(perMinute int, opts ...RateLimiterOption) *ClientRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	l := &ClientRateLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		idleTTL: defaultLimiterIdleTTL,
		clock:   time.Now,
		clients: make(map[string]*clientLimiter),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Allow consumes one token for key. When denied it returns how long the caller should wait.
func (l *ClientRateLimiter) Allow(key string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)

	client, ok := l.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now

	reservation := client.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *ClientRateLimiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < l.idleTTL {
		return
	}
	l.lastPrune = now
	for key, client := range l.clients {
		if now.Sub(client.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
}

func (l *ClientRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects callers over their budget with 429 and a Retry-After header.
func (l *ClientRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, wait := l.Allow(clientKey(r))
			if !allowed {
				seconds := int(math.Ceil(wait.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many estimate requests", http.StatusTooManyRequests).WithRetryAfter(seconds))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKeyMiddleware records the caller's address as the default client key. Signed-in callers
// are keyed by uid once authentication has run.
func ClientKeyMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestctx.WithClientKey(r.Context(), "ip:"+remoteHost(r.RemoteAddr))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientKey(r *http.Request) string {
	ctx := r.Context()
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		if key := identity.ClientKey(); key != "" {
			return key
		}
	}
	if key := requestctx.ClientKey(ctx); key != "" {
		return key
	}
	return "ip:" + remoteHost(r.RemoteAddr)
}

func remoteHost(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
