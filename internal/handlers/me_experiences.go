package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homechef/api/internal/platform/httpx"
	"github.com/homechef/api/internal/platform/pagination"
	"github.com/homechef/api/internal/services"
)

var experiencePageOptions = pagination.Options{DefaultPageSize: 20, MaxPageSize: 50}

type logExperienceRequest struct {
	RecipeID            string  `json:"recipe_id"`
	People              int     `json:"people"`
	Repetitions         *int    `json:"repetitions"`
	EstimatedCost       float64 `json:"estimated_cost"`
	AdjustedTimeMinutes int     `json:"adjusted_time_minutes"`
	Notes               string  `json:"notes"`
	Rating              int     `json:"rating"`
	CookedAt            string  `json:"cooked_at"`
}

type updateExperienceRequest struct {
	Notes  *string `json:"notes"`
	Rating *int    `json:"rating"`
}

func (h *MeHandlers) experienceRoutes(r chi.Router) {
	r.Get("/", h.listExperiences)
	r.With(h.idempotency).Post("/", h.logExperience)
	r.Get("/{experienceId}", h.getExperience)
	r.Patch("/{experienceId}", h.updateExperience)
}

func (h *MeHandlers) listExperiences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.experiences == nil {
		writeServiceUnavailable(ctx, w, "experience")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	params, err := pagination.FromRequest(r, experiencePageOptions)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.experiences.ListExperiences(ctx, uid, services.Pagination{PageSize: params.PageSize, PageToken: params.PageToken})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	items := make([]experiencePayload, 0, len(page.Items))
	for _, experience := range page.Items {
		items = append(items, buildExperiencePayload(experience))
	}
	httpx.WriteJSON(w, http.StatusOK, experienceListResponse{Items: items, NextPageToken: page.NextPageToken})
}

func (h *MeHandlers) logExperience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.experiences == nil {
		writeServiceUnavailable(ctx, w, "experience")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	var req logExperienceRequest
	if err := httpx.DecodeJSON(r, maxMeRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}

	var cookedAt time.Time
	if raw := strings.TrimSpace(req.CookedAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cooked_at must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cookedAt = parsed
	}
	repetitions := 1
	if req.Repetitions != nil {
		repetitions = *req.Repetitions
	}

	experience, err := h.experiences.LogExperience(ctx, services.LogExperienceCommand{
		UserID:              uid,
		RecipeID:            strings.TrimSpace(req.RecipeID),
		People:              req.People,
		Repetitions:         repetitions,
		EstimatedCost:       req.EstimatedCost,
		AdjustedTimeMinutes: req.AdjustedTimeMinutes,
		Notes:               req.Notes,
		Rating:              req.Rating,
		CookedAt:            cookedAt,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+experience.ID)
	httpx.WriteJSON(w, http.StatusCreated, buildExperiencePayload(experience))
}

func (h *MeHandlers) getExperience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.experiences == nil {
		writeServiceUnavailable(ctx, w, "experience")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	experience, err := h.experiences.GetExperience(ctx, uid, chi.URLParam(r, "experienceId"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildExperiencePayload(experience))
}

func (h *MeHandlers) updateExperience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.experiences == nil {
		writeServiceUnavailable(ctx, w, "experience")
		return
	}
	uid, ok := requireUID(ctx, w)
	if !ok {
		return
	}
	var req updateExperienceRequest
	if err := httpx.DecodeJSON(r, maxMeRequestBody, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest(err))
		return
	}

	experience, err := h.experiences.UpdateExperience(ctx, services.UpdateExperienceCommand{
		UserID:       uid,
		ExperienceID: chi.URLParam(r, "experienceId"),
		Notes:        req.Notes,
		Rating:       req.Rating,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildExperiencePayload(experience))
}
