package services

import (
	"context"
	"time"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination         = domain.Pagination
	Recipe             = domain.Recipe
	Ingredient         = domain.Ingredient
	Experience         = domain.Experience
	UserRecipe         = domain.UserRecipe
	SystemHealthReport = domain.SystemHealthReport
)

// RecipeService exposes the shared recipe catalogue.
type RecipeService interface {
	ListRecipes(ctx context.Context, pager Pagination) (domain.CursorPage[Recipe], error)
	GetRecipe(ctx context.Context, recipeID string) (Recipe, error)
}

// EstimateService prices and times recipes for a headcount.
type EstimateService interface {
	Estimate(ctx context.Context, cmd EstimateCommand) (Estimate, error)
	EstimateRecipe(ctx context.Context, recipe Recipe, opts EstimateOptions) (Estimate, error)
	EstimateInSession(ctx context.Context, cmd SessionEstimateCommand) (Estimate, error)
	InvalidateSession(ctx context.Context, userID, recipeID string) error
}

// MealPlanService estimates several dishes at once.
type MealPlanService interface {
	PlanMeals(ctx context.Context, cmd MealPlanCommand) (MealPlan, error)
}

// ExperienceService manages a user's cooking history.
type ExperienceService interface {
	LogExperience(ctx context.Context, cmd LogExperienceCommand) (Experience, error)
	UpdateExperience(ctx context.Context, cmd UpdateExperienceCommand) (Experience, error)
	GetExperience(ctx context.Context, userID, experienceID string) (Experience, error)
	ListExperiences(ctx context.Context, userID string, pager Pagination) (domain.CursorPage[Experience], error)
}

// UserRecipeService manages personal recipes.
type UserRecipeService interface {
	CreateRecipe(ctx context.Context, cmd UserRecipeCommand) (UserRecipe, error)
	UpdateRecipe(ctx context.Context, cmd UserRecipeCommand) (UserRecipe, error)
	DeleteRecipe(ctx context.Context, ownerID, recipeID string) error
	GetRecipe(ctx context.Context, ownerID, recipeID string) (UserRecipe, error)
	ListRecipes(ctx context.Context, ownerID string, pager Pagination) (domain.CursorPage[UserRecipe], error)
	EstimateRecipe(ctx context.Context, ownerID, recipeID string, opts EstimateOptions) (Estimate, error)
}

// SystemService aggregates utility endpoints.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// EstimateOptions are the caller-controlled estimation inputs.
type EstimateOptions struct {
	People      int
	Repetitions int
	Budget      float64
}

// EstimateCommand estimates a catalogue recipe.
type EstimateCommand struct {
	RecipeID string
	EstimateOptions
}

// SessionEstimateCommand estimates within the caller's session for RecipeID. Sequence orders
// requests from one client; zero lets the session assign the next number.
type SessionEstimateCommand struct {
	UserID   string
	RecipeID string
	Sequence uint64
	EstimateOptions
}

// Estimate is an estimator result with display strings in the configured currency.
type Estimate struct {
	estimator.Result
	Currency              string
	TotalCostDisplay      string
	CostPerServingDisplay string
	Sequence              uint64
	EstimatedAt           time.Time
}

// MealPlanEntry is one dish in a meal plan.
type MealPlanEntry struct {
	RecipeID    string
	People      int
	Repetitions int
}

// MealPlanCommand requests estimates for several dishes against an optional total budget.
type MealPlanCommand struct {
	Entries []MealPlanEntry
	Budget  float64
}

// MealPlan holds per-entry estimates in input order and the plan totals.
type MealPlan struct {
	Entries          []Estimate
	TotalCost        float64
	TotalCostDisplay string
	TotalTimeMinutes int
	Budget           float64
	BudgetExceeded   bool
	Currency         string
}

// LogExperienceCommand records a cooking session. Zero EstimatedCost or AdjustedTimeMinutes are
// filled from a variation-free estimate.
type LogExperienceCommand struct {
	UserID              string
	RecipeID            string
	People              int
	Repetitions         int
	EstimatedCost       float64
	AdjustedTimeMinutes int
	Notes               string
	Rating              int
	CookedAt            time.Time
}

// UpdateExperienceCommand edits notes and rating. Nil fields are left unchanged.
type UpdateExperienceCommand struct {
	UserID       string
	ExperienceID string
	Notes        *string
	Rating       *int
}

// UserRecipeCommand creates or replaces a personal recipe. RecipeID is ignored on create.
type UserRecipeCommand struct {
	OwnerID      string
	RecipeID     string
	Title        string
	Servings     int
	PrepTime     int
	CookTime     int
	Ingredients  []Ingredient
	Instructions string
}
