package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/homechef/api/internal/platform/firestore"
	"github.com/homechef/api/internal/repositories"
)

// Registry exposes the Firestore repositories behind repositories.Registry and owns the provider.
type Registry struct {
	provider    *pfirestore.Provider
	recipes     *RecipeRepository
	experiences *ExperienceRepository
	userRecipes *UserRecipeRepository
	health      repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs every Firestore repository on top of provider.
func NewRegistry(provider *pfirestore.Provider, health repositories.HealthRepository) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("firestore registry requires provider")
	}
	recipes, err := NewRecipeRepository(provider)
	if err != nil {
		return nil, err
	}
	experiences, err := NewExperienceRepository(provider)
	if err != nil {
		return nil, err
	}
	userRecipes, err := NewUserRecipeRepository(provider)
	if err != nil {
		return nil, err
	}
	return &Registry{
		provider:    provider,
		recipes:     recipes,
		experiences: experiences,
		userRecipes: userRecipes,
		health:      health,
	}, nil
}

// Close releases the Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}

func (r *Registry) Recipes() repositories.RecipeRepository { return r.recipes }
func (r *Registry) Experiences() repositories.ExperienceRepository { return r.experiences }
func (r *Registry) UserRecipes() repositories.UserRecipeRepository { return r.userRecipes }
func (r *Registry) Health() repositories.HealthRepository { return r.health }
