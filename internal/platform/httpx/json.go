package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBodyLimit caps request bodies decoded by DecodeJSON.
const DefaultBodyLimit int64 = 64 * 1024

var (
	// ErrEmptyBody is returned when a request carries no payload.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrBodyTooLarge is returned when a request body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("request body too large")
)

// ReadLimitedBody reads at most limit bytes of the request body.
func ReadLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, ErrEmptyBody
	}
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

// DecodeJSON reads a bounded body and decodes it into dst, rejecting unknown fields and trailing data.
func DecodeJSON(r *http.Request, limit int64, dst any) error {
	data, err := ReadLimitedBody(r, limit)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON payload: unexpected trailing data")
	}
	return nil
}

// WriteJSON writes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// FormatTime renders timestamps as RFC 3339 in UTC; the zero time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// BadRequest builds the error written for undecodable payloads.
func BadRequest(err error) Error {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return NewError("payload_too_large", err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, ErrEmptyBody):
		return NewError("invalid_request", err.Error(), http.StatusBadRequest)
	default:
		return NewError("invalid_request", err.Error(), http.StatusBadRequest)
	}
}
