package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/homechef/api/internal/platform/httpx"
)

const (
	defaultLocaleClaim   = "locale"
	defaultVerifyTimeout = 5 * time.Second
)

var (
	// ErrTokenExpired signals that the provided Firebase ID token has expired.
	ErrTokenExpired = errors.New("auth: firebase id token expired")
	// ErrTokenInvalid signals that the provided Firebase ID token is invalid for other reasons.
	ErrTokenInvalid = errors.New("auth: firebase id token invalid")
)

// TokenVerifier verifies Firebase ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// Authenticator wires Firebase token verification into HTTP middleware.
type Authenticator struct {
	verifier    TokenVerifier
	localeClaim string
	timeout     time.Duration
}

// Option customises Authenticator behaviour.
type Option func(*Authenticator)

// WithLocaleClaim overrides the claim used to populate Identity.Locale.
func WithLocaleClaim(claim string) Option {
	return func(a *Authenticator) {
		claim = strings.TrimSpace(claim)
		if claim != "" {
			a.localeClaim = claim
		}
	}
}

// WithVerificationTimeout sets the timeout used when verifying tokens.
func WithVerificationTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAuthenticator constructs a Firebase Authenticator for middleware composition.
func NewAuthenticator(verifier TokenVerifier, opts ...Option) *Authenticator {
	a := &Authenticator{
		verifier:    verifier,
		localeClaim: defaultLocaleClaim,
		timeout:     defaultVerifyTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// RequireFirebaseAuth rejects requests without a valid bearer token and stores the identity on
// the request context.
func (a *Authenticator) RequireFirebaseAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondAuthError(r.Context(), w, "unauthenticated", "authorization header missing or invalid")
				return
			}
			identity, err := a.verify(r.Context(), tokenStr)
			if err != nil {
				respondVerificationError(r.Context(), w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalFirebaseAuth attaches an identity when a valid bearer token is present and lets
// anonymous requests through. A malformed or rejected token is still an error.
func (a *Authenticator) OptionalFirebaseAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			tokenStr, ok := extractBearerToken(header)
			if !ok {
				respondAuthError(r.Context(), w, "unauthenticated", "authorization header invalid")
				return
			}
			identity, err := a.verify(r.Context(), tokenStr)
			if err != nil {
				respondVerificationError(r.Context(), w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

var errVerifierUnavailable = errors.New("auth: verifier unavailable")

func (a *Authenticator) verify(ctx context.Context, tokenStr string) (*Identity, error) {
	if a == nil || a.verifier == nil {
		return nil, errVerifierUnavailable
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	token, err := a.verifier.VerifyIDToken(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if token == nil || strings.TrimSpace(token.UID) == "" {
		return nil, ErrTokenInvalid
	}

	return newIdentity(token, a.localeClaim), nil
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func respondAuthError(ctx context.Context, w http.ResponseWriter, code, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="homechef"`)
	httpx.WriteError(ctx, w, httpx.NewError(code, message, http.StatusUnauthorized))
}

func respondVerificationError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errVerifierUnavailable):
		respondAuthError(ctx, w, "unauthenticated", "authorization service unavailable")
	case firebaseauth.IsIDTokenRevoked(err):
		respondAuthError(ctx, w, "token_revoked", "firebase id token revoked")
	case errors.Is(err, ErrTokenExpired), firebaseauth.IsIDTokenExpired(err):
		respondAuthError(ctx, w, "token_expired", "firebase id token expired")
	case errors.Is(err, ErrTokenInvalid), firebaseauth.IsIDTokenInvalid(err):
		respondAuthError(ctx, w, "invalid_token", "firebase id token invalid")
	default:
		respondAuthError(ctx, w, "invalid_token", "firebase id token verification failed")
	}
}
