package repositories

import (
	"context"

	domain "github.com/homechef/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Recipes() RecipeRepository
	Experiences() ExperienceRepository
	UserRecipes() UserRecipeRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// RecipeRepository reads the shared recipe catalogue. Lists are ordered by name.
type RecipeRepository interface {
	FindByID(ctx context.Context, recipeID string) (domain.Recipe, error)
	List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Recipe], error)
	Upsert(ctx context.Context, recipe domain.Recipe) error
}

// ExperienceRepository stores a user's cooking history, newest first.
type ExperienceRepository interface {
	Insert(ctx context.Context, experience domain.Experience) error
	Update(ctx context.Context, experience domain.Experience) error
	FindByID(ctx context.Context, userID, experienceID string) (domain.Experience, error)
	ListByUser(ctx context.Context, userID string, pager domain.Pagination) (domain.CursorPage[domain.Experience], error)
}

// UserRecipeRepository stores personal recipes scoped to their owner, most recently updated first.
type UserRecipeRepository interface {
	Insert(ctx context.Context, recipe domain.UserRecipe) error
	Update(ctx context.Context, recipe domain.UserRecipe) error
	Delete(ctx context.Context, ownerID, recipeID string) error
	FindByID(ctx context.Context, ownerID, recipeID string) (domain.UserRecipe, error)
	ListByOwner(ctx context.Context, ownerID string, pager domain.Pagination) (domain.CursorPage[domain.UserRecipe], error)
}

// HealthRepository collects dependency status for readiness checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
