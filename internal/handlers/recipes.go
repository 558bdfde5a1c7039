package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/homechef/api/internal/platform/auth"
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/platform/pagination"
	"github.com/homechef/api/internal/services"
)

const maxEstimateRequestBody = 4 * 1024

var recipePageOptions = pagination.Options{DefaultPageSize: 12, MaxPageSize: 50}

// RecipeHandlers exposes the public catalogue and catalogue estimates.
type RecipeHandlers struct {
	authn     *auth.Authenticator
	recipes   services.RecipeService
	estimates services.EstimateService
	limiter   *ClientRateLimiter
}

// NewRecipeHandlers constructs the catalogue handlers. authn may be nil, in which case every caller
// is anonymous; limiter may be nil to disable throttling.
func NewRecipeHandlers(authn *auth.Authenticator, recipes services.RecipeService, estimates services.EstimateService, limiter *ClientRateLimiter) *RecipeHandlers {
	return &RecipeHandlers{
		authn:     authn,
		recipes:   recipes,
		estimates: estimates,
		limiter:   limiter,
	}
}

// Routes registers the /recipes endpoints.
func (h *RecipeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listRecipes)
	r.Get("/{recipeId}", h.getRecipe)

	estimate := r.With()
	if h.authn != nil {
		estimate = estimate.With(h.authn.OptionalFirebaseAuth())
	}
	estimate.With(h.limiter.Middleware()).Post("/{recipeId}:estimate", h.estimateRecipe)
}

func (h *RecipeHandlers) listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.recipes == nil {
		writeServiceUnavailable(ctx, w, "recipe")
		return
	}
	params, err := pagination.FromRequest(r, recipePageOptions)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.recipes.ListRecipes(ctx, services.Pagination{PageSize: params.PageSize, PageToken: params.PageToken})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	items := make([]recipePayload, 0, len(page.Items))
	for _, recipe := range page.Items {
		items = append(items, buildRecipePayload(recipe))
	}
	httpx.WriteJSON(w, http.StatusOK, recipeListResponse{Items: items, NextPageToken: page.NextPageToken})
}

func (h *RecipeHandlers) getRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.recipes == nil {
		writeServiceUnavailable(ctx, w, "recipe")
		return
	}
	recipe, err := h.recipes.GetRecipe(ctx, strings.TrimSpace(chi.URLParam(r, "recipeId")))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildRecipePayload(recipe))
}

func (h *RecipeHandlers) estimateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.estimates == nil {
		writeServiceUnavailable(ctx, w, "estimate")
		return
	}
	var req estimateRequest
	if err := httpx.DecodeJSON(r, maxEstimateRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}

	estimate, err := h.estimates.Estimate(ctx, services.EstimateCommand{
		RecipeID:        strings.TrimSpace(chi.URLParam(r, "recipeId")),
		EstimateOptions: req.options(),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildEstimatePayload(estimate))
}
