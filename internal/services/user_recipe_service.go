package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/repositories"
)

const (
	userRecipeIDPrefix      = "urc_"
	maxUserRecipeTitle      = 120
	maxUserRecipeSteps      = 8000
	maxUserRecipeIngredient = 80
	maxIngredientNameLength = 120
	maxIngredientUnitLength = 24
)

// UserRecipeServiceDeps bundles collaborators required to construct a UserRecipeService.
type UserRecipeServiceDeps struct {
	Recipes     repositories.UserRecipeRepository
	Estimates   EstimateService
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type userRecipeService struct {
	recipes   repositories.UserRecipeRepository
	estimates EstimateService
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

var _ UserRecipeService = (*userRecipeService)(nil)

// NewUserRecipeService wires personal recipe management.
func NewUserRecipeService(deps UserRecipeServiceDeps) (UserRecipeService, error) {
	if deps.Recipes == nil {
		return nil, errors.New("user recipe service: repository is required")
	}
	if deps.Estimates == nil {
		return nil, errors.New("user recipe service: estimate service is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &userRecipeService{
		recipes:   deps.Recipes,
		estimates: deps.Estimates,
		now: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

// CreateRecipe stores a new personal recipe for cmd.OwnerID.
func (s *userRecipeService) CreateRecipe(ctx context.Context, cmd UserRecipeCommand) (UserRecipe, error) {
	recipe, err := s.build(cmd)
	if err != nil {
		return UserRecipe{}, err
	}
	now := s.now()
	recipe.ID = userRecipeIDPrefix + strings.ToLower(s.newID())
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	recipe.Ingredients = assignIngredientIDs(recipe.ID, recipe.Ingredients)

	if err := s.recipes.Insert(ctx, recipe); err != nil {
		return UserRecipe{}, translateRepoError(err, ErrRecipeNotFound)
	}
	s.logger(ctx, "user_recipe.created", map[string]any{"recipeId": recipe.ID, "ingredients": len(recipe.Ingredients)})
	return recipe, nil
}

// UpdateRecipe replaces the content of an existing personal recipe.
func (s *userRecipeService) UpdateRecipe(ctx context.Context, cmd UserRecipeCommand) (UserRecipe, error) {
	existing, err := s.GetRecipe(ctx, cmd.OwnerID, cmd.RecipeID)
	if err != nil {
		return UserRecipe{}, err
	}
	recipe, err := s.build(cmd)
	if err != nil {
		return UserRecipe{}, err
	}
	recipe.ID = existing.ID
	recipe.CreatedAt = existing.CreatedAt
	recipe.UpdatedAt = s.now()
	recipe.Ingredients = assignIngredientIDs(recipe.ID, recipe.Ingredients)

	if err := s.recipes.Update(ctx, recipe); err != nil {
		return UserRecipe{}, translateRepoError(err, ErrRecipeNotFound)
	}
	return recipe, nil
}

// DeleteRecipe removes a personal recipe.
func (s *userRecipeService) DeleteRecipe(ctx context.Context, ownerID, recipeID string) error {
	ownerID, recipeID, err := ownerAndRecipe(ownerID, recipeID)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, ownerID, recipeID); err != nil {
		return translateRepoError(err, ErrRecipeNotFound)
	}
	s.logger(ctx, "user_recipe.deleted", map[string]any{"recipeId": recipeID})
	return nil
}

// GetRecipe loads one personal recipe.
func (s *userRecipeService) GetRecipe(ctx context.Context, ownerID, recipeID string) (UserRecipe, error) {
	ownerID, recipeID, err := ownerAndRecipe(ownerID, recipeID)
	if err != nil {
		return UserRecipe{}, err
	}
	recipe, err := s.recipes.FindByID(ctx, ownerID, recipeID)
	if err != nil {
		return UserRecipe{}, translateRepoError(err, ErrRecipeNotFound)
	}
	return recipe, nil
}

// ListRecipes returns the owner's recipes, most recently updated first.
func (s *userRecipeService) ListRecipes(ctx context.Context, ownerID string, pager Pagination) (domain.CursorPage[UserRecipe], error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.CursorPage[UserRecipe]{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	page, err := s.recipes.ListByOwner(ctx, ownerID, normalizePager(pager, defaultRecipePageSize, maxRecipePageSize))
	if err != nil {
		return domain.CursorPage[UserRecipe]{}, translatePageError(err, ErrRecipeNotFound)
	}
	return page, nil
}

// EstimateRecipe prices a personal recipe with the shared estimator.
func (s *userRecipeService) EstimateRecipe(ctx context.Context, ownerID, recipeID string, opts EstimateOptions) (Estimate, error) {
	recipe, err := s.GetRecipe(ctx, ownerID, recipeID)
	if err != nil {
		return Estimate{}, err
	}
	return s.estimates.EstimateRecipe(ctx, recipe.AsRecipe(), opts)
}

func (s *userRecipeService) build(cmd UserRecipeCommand) (UserRecipe, error) {
	ownerID := strings.TrimSpace(cmd.OwnerID)
	if ownerID == "" {
		return UserRecipe{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	title := sanitizeText(cmd.Title, 0)
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return UserRecipe{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxUserRecipeTitle {
		return UserRecipe{}, fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxUserRecipeTitle)
	}
	servings := cmd.Servings
	if servings == 0 {
		servings = 1
	}
	if servings < 0 {
		return UserRecipe{}, fmt.Errorf("%w: servings must be positive", ErrInvalidInput)
	}
	if cmd.PrepTime < 0 || cmd.CookTime < 0 {
		return UserRecipe{}, fmt.Errorf("%w: preparation and cooking time must not be negative", ErrInvalidInput)
	}
	ingredients, err := normalizeIngredients(cmd.Ingredients)
	if err != nil {
		return UserRecipe{}, err
	}
	return UserRecipe{
		OwnerID:      ownerID,
		Title:        title,
		Servings:     servings,
		PrepTime:     cmd.PrepTime,
		CookTime:     cmd.CookTime,
		Ingredients:  ingredients,
		Instructions: sanitizeText(cmd.Instructions, maxUserRecipeSteps),
	}, nil
}

func normalizeIngredients(input []Ingredient) ([]Ingredient, error) {
	if len(input) > maxUserRecipeIngredient {
		return nil, fmt.Errorf("%w: at most %d ingredients allowed", ErrInvalidInput, maxUserRecipeIngredient)
	}
	out := make([]Ingredient, 0, len(input))
	for i, ing := range input {
		name := sanitizeText(ing.Name, maxIngredientNameLength)
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			return nil, fmt.Errorf("%w: ingredient %d has no name", ErrInvalidInput, i)
		}
		if ing.Quantity <= 0 || math.IsNaN(ing.Quantity) || math.IsInf(ing.Quantity, 0) {
			return nil, fmt.Errorf("%w: ingredient %q must have a positive quantity", ErrInvalidInput, name)
		}
		if ing.Quantity > estimator.MaxIngredientQuantity {
			return nil, fmt.Errorf("%w: ingredient %q quantity must be at most %g", ErrInvalidInput, name, float64(estimator.MaxIngredientQuantity))
		}
		out = append(out, Ingredient{
			Name:     name,
			Quantity: ing.Quantity,
			Unit:     sanitizeText(ing.Unit, maxIngredientUnitLength),
		})
	}
	return out, nil
}

func assignIngredientIDs(recipeID string, ingredients []Ingredient) []Ingredient {
	for i := range ingredients {
		ingredients[i].ID = fmt.Sprintf("%s-%d", recipeID, i+1)
	}
	return ingredients
}

func ownerAndRecipe(ownerID, recipeID string) (string, string, error) {
	ownerID = strings.TrimSpace(ownerID)
	recipeID = strings.TrimSpace(recipeID)
	if ownerID == "" || recipeID == "" {
		return "", "", fmt.Errorf("%w: owner id and recipe id are required", ErrInvalidInput)
	}
	return ownerID, recipeID, nil
}
