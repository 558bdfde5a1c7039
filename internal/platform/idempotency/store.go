package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultTTL is how long a key and its replayable response are kept.
const DefaultTTL = 24 * time.Hour

// Status is the lifecycle of a stored key.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ReservationState is the outcome of Reserve.
type ReservationState int

const (
	// ReservationStateNew means the caller owns the key and must run the handler.
	ReservationStateNew ReservationState = iota
	// ReservationStateCompleted means a stored response must be replayed.
	ReservationStateCompleted
	// ReservationStatePending means another request holds the key.
	ReservationStatePending
)

// Reservation is the result of Reserve together with the record as stored.
type Reservation struct {
	State  ReservationState
	Record Record
}

// Record is one stored key. Fingerprint binds the key to a caller and request body so a key
// reused for a different experience or recipe payload is rejected.
type Record struct {
	Key             string
	Fingerprint     string
	Status          Status
	ResponseStatus  int
	ResponseHeaders map[string][]string
	ResponseBody    []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       time.Time
}

// Response is the handler output captured for replay.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Store persists reservations and responses.
type Store interface {
	Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error)
	SaveResponse(ctx context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, key, fingerprint string) error
	CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// ErrFingerprintMismatch is returned when a live key is presented with a different fingerprint.
var ErrFingerprintMismatch = errors.New("idempotency: key reserved for different request fingerprint")

func (r Record) expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// reserve decides what Reserve returns for the currently stored record. When write is true
// the returned record must be persisted as the new pending reservation.
func reserve(current Record, found bool, key, fingerprint string, now time.Time, ttl time.Duration) (res Reservation, write bool, err error) {
	if found && !current.expired(now) {
		if current.Fingerprint != fingerprint {
			return Reservation{}, false, ErrFingerprintMismatch
		}
		if current.Status == StatusCompleted {
			return Reservation{State: ReservationStateCompleted, Record: current}, false, nil
		}
		return Reservation{State: ReservationStatePending, Record: current}, false, nil
	}
	pending := Record{
		Key:         key,
		Fingerprint: fingerprint,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	return Reservation{State: ReservationStateNew, Record: pending}, true, nil
}

// complete returns current updated with resp. A missing record is created on the fly so a
// response saved after an expiry race is still replayable.
func complete(current Record, found bool, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) (Record, error) {
	if found && current.Fingerprint != fingerprint {
		return Record{}, ErrFingerprintMismatch
	}
	if !found {
		current = Record{Key: key, Fingerprint: fingerprint}
	}
	if current.CreatedAt.IsZero() {
		current.CreatedAt = now
	}
	current.Status = StatusCompleted
	current.ResponseStatus = resp.Status
	current.ResponseHeaders = replayableHeaders(resp.Headers)
	current.ResponseBody = nil
	if len(resp.Body) > 0 {
		current.ResponseBody = append([]byte(nil), resp.Body...)
	}
	current.UpdatedAt = now
	current.ExpiresAt = now.Add(ttl)
	return current, nil
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// documentID hashes the key so arbitrary client strings are safe as map keys and document ids.
func documentID(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}

// Hop-by-hop and length headers are recomputed on replay.
var unreplayableHeaders = map[string]struct{}{
	"Content-Length":      {},
	"Date":                {},
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailers":            {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

func replayableHeaders(header http.Header) map[string][]string {
	out := make(map[string][]string, len(header))
	for name, values := range header {
		canonical := http.CanonicalHeaderKey(name)
		if _, skip := unreplayableHeaders[canonical]; skip {
			continue
		}
		out[canonical] = append([]string(nil), values...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func headersFromRecord(values map[string][]string) http.Header {
	header := make(http.Header, len(values))
	for name, vals := range values {
		header[name] = append([]string(nil), vals...)
	}
	return header
}
