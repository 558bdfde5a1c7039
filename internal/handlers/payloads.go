package handlers

import (
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/services"
)

type ingredientPayload struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type recipePayload struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Region      string              `json:"region,omitempty"`
	Difficulty  string              `json:"difficulty,omitempty"`
	Servings    int                 `json:"servings"`
	PrepTime    int                 `json:"prep_time"`
	CookTime    int                 `json:"cook_time"`
	TotalTime   int                 `json:"total_time"`
	Ingredients []ingredientPayload `json:"ingredients"`
	ImageURL    string              `json:"image_url,omitempty"`
	VideoURL    string              `json:"video_url,omitempty"`
	CreatedAt   string              `json:"created_at,omitempty"`
	UpdatedAt   string              `json:"updated_at,omitempty"`
}

type recipeListResponse struct {
	Items         []recipePayload `json:"items"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

type adjustedIngredientPayload struct {
	Name             string  `json:"name"`
	Unit             string  `json:"unit"`
	BaseQuantity     float64 `json:"base_quantity"`
	AdjustedQuantity float64 `json:"adjusted_quantity"`
	BaseUnits        float64 `json:"base_units"`
	UnitKnown        bool    `json:"unit_known"`
	UnitPrice        float64 `json:"unit_price"`
	Category         string  `json:"category"`
	Keyword          string  `json:"keyword,omitempty"`
	DefaultPrice     bool    `json:"default_price"`
	LineCost         float64 `json:"line_cost"`
}

type estimatePayload struct {
	RecipeID              string                      `json:"recipe_id"`
	RecipeName            string                      `json:"recipe_name"`
	TargetPeople          int                         `json:"target_people"`
	Repetitions           int                         `json:"repetitions"`
	Ingredients           []adjustedIngredientPayload `json:"ingredients"`
	IngredientsSubtotal   float64                     `json:"ingredients_subtotal"`
	RepeatedTotal         float64                     `json:"repeated_total"`
	Overhead              float64                     `json:"overhead"`
	Variation             float64                     `json:"variation"`
	VariationAmount       float64                     `json:"variation_amount"`
	TotalCost             float64                     `json:"total_cost"`
	FloorApplied          bool                        `json:"floor_applied"`
	CostPerServing        float64                     `json:"cost_per_serving"`
	BaseTimeMinutes       int                         `json:"base_time_minutes"`
	TotalTimeMinutes      int                         `json:"total_time_minutes"`
	TimePolicy            string                      `json:"time_policy"`
	Budget                float64                     `json:"budget,omitempty"`
	BudgetExceeded        bool                        `json:"budget_exceeded"`
	Currency              string                      `json:"currency"`
	TotalCostDisplay      string                      `json:"total_cost_display"`
	CostPerServingDisplay string                      `json:"cost_per_serving_display"`
	Sequence              uint64                      `json:"sequence,omitempty"`
	EstimatedAt           string                      `json:"estimated_at"`
}

type mealPlanPayload struct {
	Entries          []estimatePayload `json:"entries"`
	TotalCost        float64           `json:"total_cost"`
	TotalCostDisplay string            `json:"total_cost_display"`
	TotalTimeMinutes int               `json:"total_time_minutes"`
	Budget           float64           `json:"budget,omitempty"`
	BudgetExceeded   bool              `json:"budget_exceeded"`
	Currency         string            `json:"currency"`
}

type experiencePayload struct {
	ID                  string  `json:"id"`
	RecipeID            string  `json:"recipe_id"`
	RecipeName          string  `json:"recipe_name"`
	People              int     `json:"people"`
	Repetitions         int     `json:"repetitions"`
	EstimatedCost       float64 `json:"estimated_cost"`
	AdjustedTimeMinutes int     `json:"adjusted_time_minutes"`
	Notes               string  `json:"notes,omitempty"`
	Rating              int     `json:"rating,omitempty"`
	CookedAt            string  `json:"cooked_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type experienceListResponse struct {
	Items         []experiencePayload `json:"items"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

type userRecipePayload struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Servings     int                 `json:"servings"`
	PrepTime     int                 `json:"prep_time"`
	CookTime     int                 `json:"cook_time"`
	Ingredients  []ingredientPayload `json:"ingredients"`
	Instructions string              `json:"instructions,omitempty"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

type userRecipeListResponse struct {
	Items         []userRecipePayload `json:"items"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

func buildIngredientPayloads(ingredients []services.Ingredient) []ingredientPayload {
	out := make([]ingredientPayload, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, ingredientPayload{ID: ing.ID, Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
	}
	return out
}

func buildRecipePayload(recipe services.Recipe) recipePayload {
	return recipePayload{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Description: recipe.Description,
		Region:      recipe.Region,
		Difficulty:  string(recipe.Difficulty),
		Servings:    recipe.Servings,
		PrepTime:    recipe.PrepTime,
		CookTime:    recipe.CookTime,
		TotalTime:   recipe.TotalTime(),
		Ingredients: buildIngredientPayloads(recipe.Ingredients),
		ImageURL:    recipe.ImageURL,
		VideoURL:    recipe.VideoURL,
		CreatedAt:   httpx.FormatTime(recipe.CreatedAt),
		UpdatedAt:   httpx.FormatTime(recipe.UpdatedAt),
	}
}

func buildEstimatePayload(estimate services.Estimate) estimatePayload {
	ingredients := make([]adjustedIngredientPayload, 0, len(estimate.AdjustedIngredients))
	for _, line := range estimate.AdjustedIngredients {
		ingredients = append(ingredients, adjustedIngredientPayload{
			Name:             line.Name,
			Unit:             line.Unit,
			BaseQuantity:     line.BaseQuantity,
			AdjustedQuantity: line.AdjustedQuantity,
			BaseUnits:        line.BaseUnits,
			UnitKnown:        line.UnitKnown,
			UnitPrice:        line.UnitPrice,
			Category:         string(line.Category),
			Keyword:          line.Keyword,
			DefaultPrice:     line.DefaultPrice,
			LineCost:         line.LineCost,
		})
	}
	return estimatePayload{
		RecipeID:              estimate.RecipeID,
		RecipeName:            estimate.RecipeName,
		TargetPeople:          estimate.TargetPeople,
		Repetitions:           estimate.Repetitions,
		Ingredients:           ingredients,
		IngredientsSubtotal:   estimate.IngredientsSubtotal,
		RepeatedTotal:         estimate.RepeatedTotal,
		Overhead:              estimate.Overhead,
		Variation:             estimate.Variation,
		VariationAmount:       estimate.VariationAmount,
		TotalCost:             estimate.TotalCost,
		FloorApplied:          estimate.FloorApplied,
		CostPerServing:        estimate.CostPerServing,
		BaseTimeMinutes:       estimate.BaseTimeMinutes,
		TotalTimeMinutes:      estimate.TotalTimeMinutes,
		TimePolicy:            estimate.TimePolicy.String(),
		Budget:                estimate.Budget,
		BudgetExceeded:        estimate.BudgetExceeded,
		Currency:              estimate.Currency,
		TotalCostDisplay:      estimate.TotalCostDisplay,
		CostPerServingDisplay: estimate.CostPerServingDisplay,
		Sequence:              estimate.Sequence,
		EstimatedAt:           httpx.FormatTime(estimate.EstimatedAt),
	}
}

func buildMealPlanPayload(plan services.MealPlan) mealPlanPayload {
	entries := make([]estimatePayload, 0, len(plan.Entries))
	for _, estimate := range plan.Entries {
		entries = append(entries, buildEstimatePayload(estimate))
	}
	return mealPlanPayload{
		Entries:          entries,
		TotalCost:        plan.TotalCost,
		TotalCostDisplay: plan.TotalCostDisplay,
		TotalTimeMinutes: plan.TotalTimeMinutes,
		Budget:           plan.Budget,
		BudgetExceeded:   plan.BudgetExceeded,
		Currency:         plan.Currency,
	}
}

func buildExperiencePayload(experience services.Experience) experiencePayload {
	return experiencePayload{
		ID:                  experience.ID,
		RecipeID:            experience.RecipeID,
		RecipeName:          experience.RecipeName,
		People:              experience.People,
		Repetitions:         experience.Repetitions,
		EstimatedCost:       experience.EstimatedCost,
		AdjustedTimeMinutes: experience.AdjustedTimeMinutes,
		Notes:               experience.Notes,
		Rating:              experience.Rating,
		CookedAt:            httpx.FormatTime(experience.CookedAt),
		UpdatedAt:           httpx.FormatTime(experience.UpdatedAt),
	}
}

func buildUserRecipePayload(recipe services.UserRecipe) userRecipePayload {
	return userRecipePayload{
		ID:           recipe.ID,
		Title:        recipe.Title,
		Servings:     recipe.Servings,
		PrepTime:     recipe.PrepTime,
		CookTime:     recipe.CookTime,
		Ingredients:  buildIngredientPayloads(recipe.Ingredients),
		Instructions: recipe.Instructions,
		CreatedAt:    httpx.FormatTime(recipe.CreatedAt),
		UpdatedAt:    httpx.FormatTime(recipe.UpdatedAt),
	}
}

// estimateRequest is the body shared by every estimate endpoint. Repetitions defaults to one.
type estimateRequest struct {
	People      int     `json:"people"`
	Repetitions *int    `json:"repetitions"`
	Budget      float64 `json:"budget"`
}

func (r estimateRequest) options() services.EstimateOptions {
	repetitions := 1
	if r.Repetitions != nil {
		repetitions = *r.Repetitions
	}
	return services.EstimateOptions{People: r.People, Repetitions: repetitions, Budget: r.Budget}
}
