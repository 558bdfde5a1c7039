package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/repositories"
)

// UserRecipeStore keeps personal recipes per owner.
type UserRecipeStore struct {
	mu      sync.RWMutex
	byOwner map[string]map[string]domain.UserRecipe
}

var _ repositories.UserRecipeRepository = (*UserRecipeStore)(nil)

var userRecipeOrder = keyset[domain.UserRecipe]{
	key:  func(r domain.UserRecipe) any { return r.UpdatedAt.UTC() },
	id:   func(r domain.UserRecipe) string { return r.ID },
	desc: true,
}

// NewUserRecipeStore returns an empty store.
func NewUserRecipeStore() *UserRecipeStore {
	return &UserRecipeStore{byOwner: make(map[string]map[string]domain.UserRecipe)}
}

// Insert stores a new personal recipe.
func (s *UserRecipeStore) Insert(ctx context.Context, recipe domain.UserRecipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.byOwner[recipe.OwnerID]
	if owned == nil {
		owned = make(map[string]domain.UserRecipe)
		s.byOwner[recipe.OwnerID] = owned
	}
	if _, exists := owned[recipe.ID]; exists {
		return repositories.NewStoreError("user_recipes.insert", repositories.ErrorKindConflict, fmt.Errorf("recipe %q already exists", recipe.ID))
	}
	owned[recipe.ID] = cloneUserRecipe(recipe)
	return nil
}

// Update replaces an existing personal recipe.
func (s *UserRecipeStore) Update(ctx context.Context, recipe domain.UserRecipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.byOwner[recipe.OwnerID]
	if _, exists := owned[recipe.ID]; !exists {
		return notFoundUserRecipe("user_recipes.update", recipe.ID)
	}
	owned[recipe.ID] = cloneUserRecipe(recipe)
	return nil
}

// Delete removes a personal recipe.
func (s *UserRecipeStore) Delete(ctx context.Context, ownerID, recipeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.byOwner[ownerID]
	if _, exists := owned[recipeID]; !exists {
		return notFoundUserRecipe("user_recipes.delete", recipeID)
	}
	delete(owned, recipeID)
	return nil
}

// FindByID returns one recipe owned by ownerID.
func (s *UserRecipeStore) FindByID(ctx context.Context, ownerID, recipeID string) (domain.UserRecipe, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserRecipe{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipe, ok := s.byOwner[ownerID][strings.TrimSpace(recipeID)]
	if !ok {
		return domain.UserRecipe{}, notFoundUserRecipe("user_recipes.find", recipeID)
	}
	return cloneUserRecipe(recipe), nil
}

// ListByOwner returns the owner's recipes, most recently updated first.
func (s *UserRecipeStore) ListByOwner(ctx context.Context, ownerID string, pager domain.Pagination) (domain.CursorPage[domain.UserRecipe], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.UserRecipe]{}, err
	}
	s.mu.RLock()
	items := make([]domain.UserRecipe, 0, len(s.byOwner[ownerID]))
	for _, recipe := range s.byOwner[ownerID] {
		items = append(items, cloneUserRecipe(recipe))
	}
	s.mu.RUnlock()
	return userRecipeOrder.page("user_recipes.list", items, pager)
}

func cloneUserRecipe(recipe domain.UserRecipe) domain.UserRecipe {
	if recipe.Ingredients != nil {
		recipe.Ingredients = append([]domain.Ingredient(nil), recipe.Ingredients...)
	}
	return recipe
}

func notFoundUserRecipe(op, id string) error {
	return repositories.NewStoreError(op, repositories.ErrorKindNotFound, fmt.Errorf("recipe %q not found", id))
}
