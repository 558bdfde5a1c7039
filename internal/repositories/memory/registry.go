package memory

import (
	"context"
	"errors"

	"github.com/homechef/api/internal/repositories"
)

// Registry wires the in-memory stores behind repositories.Registry.
type Registry struct {
	recipes     *RecipeStore
	experiences *ExperienceStore
	userRecipes *UserRecipeStore
	health      repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry builds a registry around recipes. health may be nil when readiness is not served.
func NewRegistry(recipes *RecipeStore, health repositories.HealthRepository) (*Registry, error) {
	if recipes == nil {
		return nil, errors.New("memory registry: recipe store is required")
	}
	return &Registry{
		recipes:     recipes,
		experiences: NewExperienceStore(),
		userRecipes: NewUserRecipeStore(),
		health:      health,
	}, nil
}

func (r *Registry) Close(context.Context) error { return nil }
func (r *Registry) Recipes() repositories.RecipeRepository { return r.recipes }
func (r *Registry) Experiences() repositories.ExperienceRepository { return r.experiences }
func (r *Registry) UserRecipes() repositories.UserRecipeRepository { return r.userRecipes }
func (r *Registry) Health() repositories.HealthRepository { return r.health }
