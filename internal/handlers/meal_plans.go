package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/services"
)

const maxMealPlanRequestBody = 32 * 1024

type mealPlanEntryRequest struct {
	RecipeID    string `json:"recipe_id"`
	People      int    `json:"people"`
	Repetitions *int   `json:"repetitions"`
}

type mealPlanRequest struct {
	Entries []mealPlanEntryRequest `json:"entries"`
	Budget  float64                `json:"budget"`
}

// MealPlanHandlers exposes multi-dish estimation.
type MealPlanHandlers struct {
	plans   services.MealPlanService
	limiter *ClientRateLimiter
}

// NewMealPlanHandlers constructs meal plan handlers sharing the estimate rate limiter.
func NewMealPlanHandlers(plans services.MealPlanService, limiter *ClientRateLimiter) *MealPlanHandlers {
	return &MealPlanHandlers{plans: plans, limiter: limiter}
}

// Routes registers /meal-plans:estimate directly on the API router.
func (h *MealPlanHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.With(h.limiter.Middleware()).Post("/meal-plans:estimate", h.estimateMealPlan)
}

func (h *MealPlanHandlers) estimateMealPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.plans == nil {
		writeServiceUnavailable(ctx, w, "meal_plan")
		return
	}
	var req mealPlanRequest
	if err := httpx.DecodeJSON(r, maxMealPlanRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}

	cmd := services.MealPlanCommand{
		Entries: make([]services.MealPlanEntry, 0, len(req.Entries)),
		Budget:  req.Budget,
	}
	for _, entry := range req.Entries {
		repetitions := 1
		if entry.Repetitions != nil {
			repetitions = *entry.Repetitions
		}
		cmd.Entries = append(cmd.Entries, services.MealPlanEntry{
			RecipeID:    strings.TrimSpace(entry.RecipeID),
			People:      entry.People,
			Repetitions: repetitions,
		})
	}

	plan, err := h.plans.PlanMeals(ctx, cmd)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildMealPlanPayload(plan))
}
