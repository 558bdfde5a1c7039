package services

import (
	"errors"
	"fmt"

	"github.com/homechef/api/internal/repositories"
)

var (
	// ErrRecipeNotFound indicates the requested catalogue or personal recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe: not found")
	// ErrInvalidInput marks caller input rejected before reaching the estimator or a repository.
	ErrInvalidInput = errors.New("services: invalid input")
	// ErrExperienceNotFound indicates the experience does not exist for the user.
	ErrExperienceNotFound = errors.New("experience: not found")
	// ErrConflict signals a write that collides with existing data.
	ErrConflict = errors.New("services: conflict")
	// ErrUnavailable wraps storage failures the caller may retry.
	ErrUnavailable = errors.New("services: dependency unavailable")
)

// MealPlanEntryError identifies the meal plan entry that failed.
type MealPlanEntryError struct {
	Index    int
	RecipeID string
	Err      error
}

func (e *MealPlanEntryError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("meal plan entry %d (%s): %v", e.Index, e.RecipeID, e.Err)
}

func (e *MealPlanEntryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// translateRepoError maps repository categories onto service sentinels, keeping the cause.
func translateRepoError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) {
		return err
	}
	switch {
	case repoErr.IsNotFound():
		return fmt.Errorf("%w: %w", notFound, err)
	case repoErr.IsConflict():
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case repoErr.IsUnavailable():
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return err
	}
}
