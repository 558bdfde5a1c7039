package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/platform/pagination"
	"github.com/homechef/api/internal/repositories"
)

const (
	defaultRecipePageSize = 12
	maxRecipePageSize     = 50
)

// RecipeServiceDeps bundles collaborators required to construct a RecipeService.
type RecipeServiceDeps struct {
	Recipes repositories.RecipeRepository
}

type recipeService struct {
	recipes repositories.RecipeRepository
}

var _ RecipeService = (*recipeService)(nil)

// NewRecipeService wires the catalogue repository.
func NewRecipeService(deps RecipeServiceDeps) (RecipeService, error) {
	if deps.Recipes == nil {
		return nil, errors.New("recipe service: recipe repository is required")
	}
	return &recipeService{recipes: deps.Recipes}, nil
}

// ListRecipes returns one page of the catalogue ordered by name.
func (s *recipeService) ListRecipes(ctx context.Context, pager Pagination) (domain.CursorPage[Recipe], error) {
	pager = normalizePager(pager, defaultRecipePageSize, maxRecipePageSize)
	page, err := s.recipes.List(ctx, pager)
	if err != nil {
		return domain.CursorPage[Recipe]{}, translatePageError(err, ErrRecipeNotFound)
	}
	return page, nil
}

// GetRecipe loads one catalogue recipe.
func (s *recipeService) GetRecipe(ctx context.Context, recipeID string) (Recipe, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return Recipe{}, fmt.Errorf("%w: recipe id is required", ErrInvalidInput)
	}
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return Recipe{}, translateRepoError(err, ErrRecipeNotFound)
	}
	return recipe, nil
}

func normalizePager(pager Pagination, def, max int) Pagination {
	switch {
	case pager.PageSize <= 0:
		pager.PageSize = def
	case pager.PageSize > max:
		pager.PageSize = max
	}
	pager.PageToken = strings.TrimSpace(pager.PageToken)
	return pager
}

// translatePageError keeps malformed page tokens distinguishable from storage failures.
func translatePageError(err error, notFound error) error {
	if errors.Is(err, pagination.ErrInvalidPageToken) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return translateRepoError(err, notFound)
}
