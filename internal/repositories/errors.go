package repositories

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a StoreError.
type ErrorKind string

const (
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindConflict    ErrorKind = "conflict"
	ErrorKindUnavailable ErrorKind = "unavailable"
	ErrorKindInvalid     ErrorKind = "invalid"
)

// StoreError is the RepositoryError produced by the in-memory backends.
type StoreError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

var _ RepositoryError = (*StoreError)(nil)

// NewStoreError constructs a categorised repository error.
func NewStoreError(op string, kind ErrorKind, err error) *StoreError {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap exposes the underlying error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *StoreError) IsNotFound() bool { return e != nil && e.Kind == ErrorKindNotFound }
func (e *StoreError) IsConflict() bool { return e != nil && e.Kind == ErrorKindConflict }
func (e *StoreError) IsUnavailable() bool { return e != nil && e.Kind == ErrorKindUnavailable }

// IsNotFound reports whether err is a repository error marked as not found.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err is a repository error marked as a conflict.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether err is a repository error marked as unavailable.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
