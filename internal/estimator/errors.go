package estimator

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition marks recipe data the estimator refuses to compute on (zero servings, no ingredients, ...).
	// It points at a defect in the recipe source rather than in the caller's input.
	ErrPrecondition = errors.New("estimator: precondition violated")
	// ErrSuperseded is returned by sessions when a newer request has replaced the one being processed.
	ErrSuperseded = errors.New("estimator: request superseded")
	// ErrInvalidConfig is returned when tables or tuning values cannot be used.
	ErrInvalidConfig = errors.New("estimator: invalid configuration")
)

// Request fields that can fail range validation.
const (
	FieldTargetPeople = "targetPeople"
	FieldRepetitions  = "repetitions"
	FieldBudget       = "budget"
)

// ValidationError reports a caller-supplied value outside its allowed range.
type ValidationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Max > 0 {
		return fmt.Sprintf("estimator: %s must be between %g and %g, got %g", e.Field, e.Min, e.Max, e.Value)
	}
	return fmt.Sprintf("estimator: %s must be at least %g, got %g", e.Field, e.Min, e.Value)
}

// IsValidationError reports whether err wraps a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}
