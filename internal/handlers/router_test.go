package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/services"
)

func TestNewRouter_WithoutRegistrars(t *testing.T) {
	now := time.Date(2026, time.March, 1, 6, 0, 0, 0, time.UTC)
	health := NewHealthHandlers(
		WithHealthSystemService(&stubSystemService{report: services.SystemHealthReport{
			Status: domain.HealthStatusOK,
			Checks: map[string]domain.SystemHealthCheck{"price_table": {Status: domain.HealthStatusOK}},
		}}),
		WithHealthClock(func() time.Time { return now }),
	)
	router := NewRouter(WithHealthHandlers(health))

	cases := []struct {
		method, path string
		status       int
		code         string
	}{
		{method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{method: http.MethodGet, path: "/readyz", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/recipes", status: http.StatusNotImplemented, code: "not_implemented"},
		{method: http.MethodPost, path: "/api/v1/recipes/ndole:estimate", status: http.StatusNotImplemented, code: "not_implemented"},
		{method: http.MethodPost, path: "/api/v1/me/experiences", status: http.StatusNotImplemented, code: "not_implemented"},
		{method: http.MethodPost, path: "/api/v1/meal-plans:estimate", status: http.StatusNotImplemented, code: "not_implemented"},
		{method: http.MethodGet, path: "/does/not/exist", status: http.StatusNotFound, code: "route_not_found"},
		{method: http.MethodPost, path: "/healthz", status: http.StatusMethodNotAllowed, code: "method_not_allowed"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected JSON, got %q", ct)
			}
			if tc.code != "" {
				if body := decodeError(t, rr); body["error"] != tc.code {
					t.Fatalf("expected %s, got %v", tc.code, body["error"])
				}
			}
		})
	}
}

func TestNewRouter_WithRegistrars(t *testing.T) {
	recipes := NewRecipeHandlers(nil, &stubRecipeService{}, &stubEstimateService{}, nil)
	plans := NewMealPlanHandlers(&stubMealPlanService{
		planFunc: func(ctx context.Context, cmd services.MealPlanCommand) (services.MealPlan, error) {
			return services.MealPlan{Entries: []services.Estimate{sampleEstimate()}, TotalCost: 3000}, nil
		},
	}, nil)
	me := func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	}
	router := NewRouter(WithRecipeRoutes(recipes.Routes), WithMealPlanRoutes(plans.Routes), WithMeRoutes(me))

	cases := []struct {
		req    *http.Request
		status int
	}{
		{httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil), http.StatusOK},
		{httptest.NewRequest(http.MethodGet, "/api/v1/recipes/unknown", nil), http.StatusNotFound},
		{jsonRequest(t, http.MethodPost, "/api/v1/recipes/poulet-dg:estimate", map[string]any{"people": 8}), http.StatusOK},
		{jsonRequest(t, http.MethodPost, "/api/v1/meal-plans:estimate", map[string]any{"entries": []map[string]any{{"recipe_id": "poulet-dg", "people": 8}}}), http.StatusOK},
		{httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), http.StatusNoContent},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, tc.req)
		if rr.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.req.Method, tc.req.URL.Path, tc.status, rr.Code, rr.Body.String())
		}
	}
}

func TestNewRouter_MiddlewareOrder(t *testing.T) {
	var sawRequestID bool
	probe := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawRequestID = middleware.GetReqID(r.Context()) != ""
			w.Header().Set("X-Test-Middleware", "global")
			next.ServeHTTP(w, r)
		})
	}
	rr := httptest.NewRecorder()
	NewRouter(WithMiddlewares(probe, nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Header().Get("X-Test-Middleware") != "global" {
		t.Fatal("expected global middleware to run")
	}
	if !sawRequestID {
		t.Fatal("expected the request id to be assigned before custom middleware")
	}
}
