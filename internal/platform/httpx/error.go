package httpx

import (
	"context"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/homechef/api/internal/platform/requestctx"
)

const retryAfterDetail = "retry_after_seconds"

// Error is the API error envelope. Details are merged into the top-level JSON object:
//
//	{"error": "validation_failed", "message": "...", "status": 422, "request_id": "...", "field": "people"}
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an envelope. A zero status means 500. Code and message are flattened to a
// single bounded line since they may echo client input.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{Code: oneLine(code, 80), Message: oneLine(message, 512), Status: status}
}

func (e Error) Error() string { return e.Code + ": " + e.Message }

// WithDetails returns a copy of e carrying details in addition to any it already has.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	maps.Copy(merged, e.Details)
	maps.Copy(merged, details)
	e.Details = merged
	return e
}

// WithRetryAfter tells throttled or unavailable callers when to come back. WriteError mirrors
// it in the Retry-After header.
func (e Error) WithRetryAfter(seconds int) Error {
	if seconds <= 0 {
		return e
	}
	return e.WithDetails(map[string]any{retryAfterDetail: seconds})
}

// WriteError renders err with the chi request id and the trace id from ctx when known.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	if err.Status == 0 {
		err.Status = http.StatusInternalServerError
	}
	payload := make(map[string]any, len(err.Details)+5)
	maps.Copy(payload, err.Details)
	payload["error"] = err.Code
	payload["message"] = err.Message
	payload["status"] = err.Status
	if id := oneLine(middleware.GetReqID(ctx), 80); id != "" {
		payload["request_id"] = id
	}
	if id := oneLine(requestctx.TraceID(ctx), 64); id != "" {
		payload["trace_id"] = id
	}
	if seconds, ok := err.Details[retryAfterDetail].(int); ok && seconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	WriteJSON(w, err.Status, payload)
}

func oneLine(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
