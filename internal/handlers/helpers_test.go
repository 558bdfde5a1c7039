package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/platform/auth"
	"github.com/homechef/api/internal/services"
)

var testNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

type stubRecipeService struct {
	listFunc func(ctx context.Context, pager services.Pagination) (domain.CursorPage[services.Recipe], error)
	getFunc  func(ctx context.Context, recipeID string) (services.Recipe, error)
}

func (s *stubRecipeService) ListRecipes(ctx context.Context, pager services.Pagination) (domain.CursorPage[services.Recipe], error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, pager)
	}
	return domain.CursorPage[services.Recipe]{}, nil
}

func (s *stubRecipeService) GetRecipe(ctx context.Context, recipeID string) (services.Recipe, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, recipeID)
	}
	return services.Recipe{}, services.ErrRecipeNotFound
}

type stubEstimateService struct {
	estimateFunc   func(ctx context.Context, cmd services.EstimateCommand) (services.Estimate, error)
	recipeFunc     func(ctx context.Context, recipe services.Recipe, opts services.EstimateOptions) (services.Estimate, error)
	sessionFunc    func(ctx context.Context, cmd services.SessionEstimateCommand) (services.Estimate, error)
	invalidateFunc func(ctx context.Context, userID, recipeID string) error
}

func (s *stubEstimateService) Estimate(ctx context.Context, cmd services.EstimateCommand) (services.Estimate, error) {
	if s.estimateFunc != nil {
		return s.estimateFunc(ctx, cmd)
	}
	return sampleEstimate(), nil
}

func (s *stubEstimateService) EstimateRecipe(ctx context.Context, recipe services.Recipe, opts services.EstimateOptions) (services.Estimate, error) {
	if s.recipeFunc != nil {
		return s.recipeFunc(ctx, recipe, opts)
	}
	return sampleEstimate(), nil
}

func (s *stubEstimateService) EstimateInSession(ctx context.Context, cmd services.SessionEstimateCommand) (services.Estimate, error) {
	if s.sessionFunc != nil {
		return s.sessionFunc(ctx, cmd)
	}
	est := sampleEstimate()
	est.Sequence = cmd.Sequence
	return est, nil
}

func (s *stubEstimateService) InvalidateSession(ctx context.Context, userID, recipeID string) error {
	if s.invalidateFunc != nil {
		return s.invalidateFunc(ctx, userID, recipeID)
	}
	return nil
}

type stubMealPlanService struct {
	planFunc func(ctx context.Context, cmd services.MealPlanCommand) (services.MealPlan, error)
}

func (s *stubMealPlanService) PlanMeals(ctx context.Context, cmd services.MealPlanCommand) (services.MealPlan, error) {
	return s.planFunc(ctx, cmd)
}

type stubExperienceService struct {
	logFunc    func(ctx context.Context, cmd services.LogExperienceCommand) (services.Experience, error)
	updateFunc func(ctx context.Context, cmd services.UpdateExperienceCommand) (services.Experience, error)
	getFunc    func(ctx context.Context, userID, experienceID string) (services.Experience, error)
	listFunc   func(ctx context.Context, userID string, pager services.Pagination) (domain.CursorPage[services.Experience], error)
}

func (s *stubExperienceService) LogExperience(ctx context.Context, cmd services.LogExperienceCommand) (services.Experience, error) {
	return s.logFunc(ctx, cmd)
}

func (s *stubExperienceService) UpdateExperience(ctx context.Context, cmd services.UpdateExperienceCommand) (services.Experience, error) {
	return s.updateFunc(ctx, cmd)
}

func (s *stubExperienceService) GetExperience(ctx context.Context, userID, experienceID string) (services.Experience, error) {
	return s.getFunc(ctx, userID, experienceID)
}

func (s *stubExperienceService) ListExperiences(ctx context.Context, userID string, pager services.Pagination) (domain.CursorPage[services.Experience], error) {
	return s.listFunc(ctx, userID, pager)
}

type stubUserRecipeService struct {
	createFunc   func(ctx context.Context, cmd services.UserRecipeCommand) (services.UserRecipe, error)
	updateFunc   func(ctx context.Context, cmd services.UserRecipeCommand) (services.UserRecipe, error)
	deleteFunc   func(ctx context.Context, ownerID, recipeID string) error
	getFunc      func(ctx context.Context, ownerID, recipeID string) (services.UserRecipe, error)
	listFunc     func(ctx context.Context, ownerID string, pager services.Pagination) (domain.CursorPage[services.UserRecipe], error)
	estimateFunc func(ctx context.Context, ownerID, recipeID string, opts services.EstimateOptions) (services.Estimate, error)
}

func (s *stubUserRecipeService) CreateRecipe(ctx context.Context, cmd services.UserRecipeCommand) (services.UserRecipe, error) {
	return s.createFunc(ctx, cmd)
}

func (s *stubUserRecipeService) UpdateRecipe(ctx context.Context, cmd services.UserRecipeCommand) (services.UserRecipe, error) {
	return s.updateFunc(ctx, cmd)
}

func (s *stubUserRecipeService) DeleteRecipe(ctx context.Context, ownerID, recipeID string) error {
	return s.deleteFunc(ctx, ownerID, recipeID)
}

func (s *stubUserRecipeService) GetRecipe(ctx context.Context, ownerID, recipeID string) (services.UserRecipe, error) {
	return s.getFunc(ctx, ownerID, recipeID)
}

func (s *stubUserRecipeService) ListRecipes(ctx context.Context, ownerID string, pager services.Pagination) (domain.CursorPage[services.UserRecipe], error) {
	return s.listFunc(ctx, ownerID, pager)
}

func (s *stubUserRecipeService) EstimateRecipe(ctx context.Context, ownerID, recipeID string, opts services.EstimateOptions) (services.Estimate, error) {
	return s.estimateFunc(ctx, ownerID, recipeID, opts)
}

var (
	_ services.RecipeService     = (*stubRecipeService)(nil)
	_ services.EstimateService   = (*stubEstimateService)(nil)
	_ services.MealPlanService   = (*stubMealPlanService)(nil)
	_ services.ExperienceService = (*stubExperienceService)(nil)
	_ services.UserRecipeService = (*stubUserRecipeService)(nil)
)

func sampleRecipe() services.Recipe {
	return services.Recipe{
		ID:          "poulet-dg",
		Name:        "Poulet DG",
		Region:      "Littoral",
		Difficulty:  domain.DifficultyMedium,
		Servings:    4,
		PrepTime:    20,
		CookTime:    40,
		Ingredients: []services.Ingredient{{ID: "poulet-dg-1", Name: "Chicken", Quantity: 1, Unit: "kg"}},
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
}

func sampleEstimate() services.Estimate {
	return services.Estimate{
		Result: estimator.Result{
			RecipeID:     "poulet-dg",
			RecipeName:   "Poulet DG",
			TargetPeople: 8,
			Repetitions:  1,
			AdjustedIngredients: []estimator.AdjustedIngredient{{
				Name:             "Chicken",
				Unit:             "kg",
				BaseQuantity:     1,
				AdjustedQuantity: 2,
				BaseUnits:        2,
				UnitKnown:        true,
				UnitPrice:        1500,
				Category:         estimator.CategoryProteins,
				Keyword:          "chicken",
				LineCost:         3000,
			}},
			IngredientsSubtotal: 3000,
			RepeatedTotal:       3000,
			TotalCost:           3000,
			CostPerServing:      375,
			BaseTimeMinutes:     60,
			TotalTimeMinutes:    120,
			TimePolicy:          estimator.TimePolicyLinear,
		},
		Currency:              "XAF",
		TotalCostDisplay:      "3,000 FCFA",
		CostPerServingDisplay: "375 FCFA",
		EstimatedAt:           testNow,
	}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUser(req *http.Request, uid string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: uid}))
}

func serve(routes func(chi.Router), req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	routes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body: %v (%s)", err, rr.Body.String())
	}
	return body
}
