package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/platform/pagination"
	"github.com/homechef/api/internal/services"
)

type userRecipeIngredientRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type userRecipeRequest struct {
	Title        string                        `json:"title"`
	Servings     int                           `json:"servings"`
	PrepTime     int                           `json:"prep_time"`
	CookTime     int                           `json:"cook_time"`
	Ingredients  []userRecipeIngredientRequest `json:"ingredients"`
	Instructions string                        `json:"instructions"`
}

func (req userRecipeRequest) command(ownerID, recipeID string) services.UserRecipeCommand {
	ingredients := make([]services.Ingredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ingredients = append(ingredients, services.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
	}
	return services.UserRecipeCommand{
		OwnerID:      ownerID,
		RecipeID:     recipeID,
		Title:        req.Title,
		Servings:     req.Servings,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Ingredients:  ingredients,
		Instructions: req.Instructions,
	}
}

func (h *MeHandlers) userRecipeRoutes(r chi.Router) {
	r.Get("/", h.listUserRecipes)
	r.With(h.idempotency).Post("/", h.createUserRecipe)
	r.Get("/{recipeId}", h.getUserRecipe)
	r.Put("/{recipeId}", h.updateUserRecipe)
	r.Delete("/{recipeId}", h.deleteUserRecipe)
	r.With(h.limiter.Middleware()).Post("/{recipeId}:estimate", h.estimateUserRecipe)
}

func (h *MeHandlers) listUserRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.userRecipes == nil {
		writeServiceUnavailable(ctx, w, "user_recipe")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	params, err := pagination.FromRequest(r, recipePageOptions)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	page, err := h.userRecipes.ListRecipes(ctx, uid, services.Pagination{PageSize: params.PageSize, PageToken: params.PageToken})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	items := make([]userRecipePayload, 0, len(page.Items))
	for _, recipe := range page.Items {
		items = append(items, buildUserRecipePayload(recipe))
	}
	httpx.WriteJSON(w, http.StatusOK, userRecipeListResponse{Items: items, NextPageToken: page.NextPageToken})
}

func (h *MeHandlers) createUserRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.userRecipes == nil {
		writeServiceUnavailable(ctx, w, "user_recipe")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	var req userRecipeRequest
	if err := httpx.DecodeJSON(r, maxMeRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}
	recipe, err := h.userRecipes.CreateRecipe(ctx, req.command(uid, ""))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+recipe.ID)
	httpx.WriteJSON(w, http.StatusCreated, buildUserRecipePayload(recipe))
}

func (h *MeHandlers) getUserRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.userRecipes == nil {
		writeServiceUnavailable(ctx, w, "user_recipe")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	recipe, err := h.userRecipes.GetRecipe(ctx, uid, chi.URLParam(r, "recipeId"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildUserRecipePayload(recipe))
}

func (h *MeHandlers) updateUserRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.userRecipes == nil {
		writeServiceUnavailable(ctx, w, "user_recipe")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	var req userRecipeRequest
	if err := httpx.DecodeJSON(r, maxMeRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}
	recipe, err := h.userRecipes.UpdateRecipe(ctx, req.command(uid, chi.URLParam(r, "recipeId")))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildUserRecipePayload(recipe))
}

func (h *MeHandlers) deleteUserRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.userRecipes == nil {
		writeServiceUnavailable(ctx, w, "user_recipe")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	if err := h.userRecipes.DeleteRecipe(ctx, uid, chi.URLParam(r, "recipeId")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MeHandlers) estimateUserRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.userRecipes == nil {
		writeServiceUnavailable(ctx, w, "user_recipe")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	var req estimateRequest
	if err := httpx.DecodeJSON(r, maxEstimateRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}
	estimate, err := h.userRecipes.EstimateRecipe(ctx, uid, chi.URLParam(r, "recipeId"), req.options())
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildEstimatePayload(estimate))
}
