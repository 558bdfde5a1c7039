package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/platform/pagination"
	"github.com/homechef/api/internal/services"
)

// requestFields renames estimator fields to the request body keys clients send.
var requestFields = map[string]string{
	estimator.FieldTargetPeople: "people",
}

// serviceError maps service and estimator failures onto the API error envelope.
func serviceError(err error) httpx.Error {
	var entryErr *services.MealPlanEntryError
	if errors.As(err, &entryErr) {
		inner := serviceError(entryErr.Err)
		details := map[string]any{"entry_index": entryErr.Index}
		for k, v := range inner.Details {
			details[k] = v
		}
		return inner.WithDetails(details)
	}

	if verr, ok := estimator.IsValidationError(err); ok {
		field := verr.Field
		if alias, ok := requestFields[field]; ok {
			field = alias
		}
		details := map[string]any{"field": field, "min": verr.Min}
		if verr.Max > 0 {
			details["max"] = verr.Max
		}
		return httpx.NewError("validation_failed", verr.Error(), http.StatusUnprocessableEntity).WithDetails(details)
	}

	switch {
	case errors.Is(err, estimator.ErrPrecondition):
		return httpx.NewError("recipe_invalid", err.Error(), http.StatusConflict)
	case errors.Is(err, estimator.ErrSuperseded):
		return httpx.NewError("estimate_superseded", "a newer estimate request replaced this one", http.StatusConflict)
	case errors.Is(err, services.ErrRecipeNotFound):
		return httpx.NewError("recipe_not_found", "recipe not found", http.StatusNotFound)
	case errors.Is(err, services.ErrExperienceNotFound):
		return httpx.NewError("experience_not_found", "experience not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, pagination.ErrInvalidPageToken):
		return httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrConflict):
		return httpx.NewError("conflict", "the resource was modified concurrently", http.StatusConflict)
	case errors.Is(err, services.ErrUnavailable):
		return httpx.NewError("service_unavailable", "storage is temporarily unavailable", http.StatusServiceUnavailable).WithRetryAfter(5)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return httpx.NewError("request_timeout", "request was cancelled before completion", http.StatusServiceUnavailable)
	default:
		return httpx.NewError("internal_error", "failed to process request", http.StatusInternalServerError)
	}
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	httpx.WriteError(ctx, w, serviceError(err))
}

func writeServiceUnavailable(ctx context.Context, w http.ResponseWriter, name string) {
	httpx.WriteError(ctx, w, httpx.NewError(name+"_service_unavailable", name+" service unavailable", http.StatusServiceUnavailable))
}
