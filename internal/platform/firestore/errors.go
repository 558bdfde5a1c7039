package firestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a Firestore failure the way repositories report it.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a Firestore failure annotated with the repository operation, e.g. "recipes.get".
// It satisfies the repositories error contract through IsNotFound, IsConflict and IsUnavailable.
type Error struct {
	op   string
	kind Kind
	err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op == "" {
		return fmt.Sprintf("firestore %s: %v", e.kind, e.err)
	}
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Op names the failed operation.
func (e *Error) Op() string {
	if e == nil {
		return ""
	}
	return e.op
}

// Kind reports the classification.
func (e *Error) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.kind
}

func (e *Error) IsNotFound() bool    { return e.Kind() == KindNotFound }
func (e *Error) IsConflict() bool    { return e.Kind() == KindConflict }
func (e *Error) IsUnavailable() bool { return e.Kind() == KindUnavailable }

func kindOf(code codes.Code) Kind {
	switch code {
	case codes.NotFound:
		return KindNotFound
	case codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted, codes.OutOfRange:
		return KindConflict
	case codes.Unavailable, codes.ResourceExhausted, codes.Internal,
		codes.PermissionDenied, codes.Unauthenticated:
		// Credential problems are an outage from the caller's point of view.
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// WrapError classifies err for the repository layer. Context cancellation and gRPC
// cancel/deadline statuses come back as the plain context errors; an *Error already in the
// chain is reused and only gains op when it has none.
func WrapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	code := status.Code(err)
	switch code {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	}

	var existing *Error
	if errors.As(err, &existing) {
		if existing.op == "" {
			existing.op = op
		}
		return existing
	}
	return &Error{op: op, kind: kindOf(code), err: err}
}
