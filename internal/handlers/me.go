package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/homechef/api/internal/platform/auth"
	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/services"
)

const maxMeRequestBody = 64 * 1024

// MeHandlersDeps bundles the services behind the /me endpoints.
type MeHandlersDeps struct {
	Authenticator *auth.Authenticator
	Estimates     services.EstimateService
	Experiences   services.ExperienceService
	UserRecipes   services.UserRecipeService
	// Idempotency wraps creating endpoints once the caller is authenticated.
	Idempotency func(http.Handler) http.Handler
	Limiter     *ClientRateLimiter
}

// MeHandlers exposes endpoints scoped to the signed-in cook.
type MeHandlers struct {
	authn       *auth.Authenticator
	estimates   services.EstimateService
	experiences services.ExperienceService
	userRecipes services.UserRecipeService
	idempotency func(http.Handler) http.Handler
	limiter     *ClientRateLimiter
}

// NewMeHandlers constructs handlers enforcing Firebase authentication before invoking services.
func NewMeHandlers(deps MeHandlersDeps) *MeHandlers {
	idem := deps.Idempotency
	if idem == nil {
		idem = func(next http.Handler) http.Handler { return next }
	}
	return &MeHandlers{
		authn:       deps.Authenticator,
		estimates:   deps.Estimates,
		experiences: deps.Experiences,
		userRecipes: deps.UserRecipes,
		idempotency: idem,
		limiter:     deps.Limiter,
	}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Route("/estimates", h.estimateRoutes)
	r.Route("/experiences", h.experienceRoutes)
	r.Route("/recipes", h.userRecipeRoutes)
}

func (h *MeHandlers) estimateRoutes(r chi.Router) {
	r.With(h.limiter.Middleware()).Post("/", h.estimateInSession)
	r.Delete("/{recipeId}", h.invalidateSession)
}

type sessionEstimateRequest struct {
	RecipeID string `json:"recipe_id"`
	Sequence uint64 `json:"sequence"`
	estimateRequest
}

func (h *MeHandlers) estimateInSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.estimates == nil {
		writeServiceUnavailable(ctx, w, "estimate")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	var req sessionEstimateRequest
	if err := httpx.DecodeJSON(r, maxEstimateRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}

	estimate, err := h.estimates.EstimateInSession(ctx, services.SessionEstimateCommand{
		UserID:          uid,
		RecipeID:        strings.TrimSpace(req.RecipeID),
		Sequence:        req.Sequence,
		EstimateOptions: req.options(),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildEstimatePayload(estimate))
}

func (h *MeHandlers) invalidateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.estimates == nil {
		writeServiceUnavailable(ctx, w, "estimate")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	if err := h.estimates.InvalidateSession(ctx, uid, chi.URLParam(r, "recipeId")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requireUID(ctx context.Context, w http.ResponseWriter) (string, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	return strings.TrimSpace(identity.UID), true
}
