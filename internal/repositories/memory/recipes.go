package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/repositories"
)

// RecipeStore keeps the recipe catalogue in memory, typically seeded from a YAML file.
type RecipeStore struct {
	mu      sync.RWMutex
	recipes map[string]domain.Recipe
}

var _ repositories.RecipeRepository = (*RecipeStore)(nil)

var recipeOrder = keyset[domain.Recipe]{
	key: func(r domain.Recipe) any { return r.Name },
	id:  func(r domain.Recipe) string { return r.ID },
}

// NewRecipeStore returns a store holding the given recipes.
func NewRecipeStore(recipes ...domain.Recipe) *RecipeStore {
	store := &RecipeStore{recipes: make(map[string]domain.Recipe, len(recipes))}
	for _, recipe := range recipes {
		store.recipes[recipe.ID] = cloneRecipe(recipe)
	}
	return store
}

// FindByID returns the recipe with the given ID.
func (s *RecipeStore) FindByID(ctx context.Context, recipeID string) (domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recipe{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipe, ok := s.recipes[strings.TrimSpace(recipeID)]
	if !ok {
		return domain.Recipe{}, repositories.NewStoreError("recipes.find", repositories.ErrorKindNotFound, fmt.Errorf("recipe %q not found", recipeID))
	}
	return cloneRecipe(recipe), nil
}

// List returns recipes ordered by name.
func (s *RecipeStore) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Recipe], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Recipe]{}, err
	}
	s.mu.RLock()
	items := make([]domain.Recipe, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		items = append(items, cloneRecipe(recipe))
	}
	s.mu.RUnlock()
	return recipeOrder.page("recipes.list", items, pager)
}

// Upsert inserts or replaces a recipe.
func (s *RecipeStore) Upsert(ctx context.Context, recipe domain.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(recipe.ID) == "" {
		return repositories.NewStoreError("recipes.upsert", repositories.ErrorKindInvalid, errors.New("recipe id is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[recipe.ID] = cloneRecipe(recipe)
	return nil
}

// Len reports the number of stored recipes.
func (s *RecipeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

func cloneRecipe(recipe domain.Recipe) domain.Recipe {
	if recipe.Ingredients != nil {
		recipe.Ingredients = append([]domain.Ingredient(nil), recipe.Ingredients...)
	}
	return recipe
}
