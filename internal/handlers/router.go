package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/homechef/api/internal/platform/httpx"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 30 * time.Second
)

// RouteRegistrar attaches a handler group's routes.
type RouteRegistrar func(r chi.Router)

// Option customises NewRouter.
type Option func(*router)

type router struct {
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	recipes     RouteRegistrar
	mealPlans   RouteRegistrar
	me          RouteRegistrar
}

// WithMiddlewares appends global middleware after request id, real ip and timeout.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(rt *router) { rt.middlewares = append(rt.middlewares, mw...) }
}

func WithHealthHandlers(h *HealthHandlers) Option {
	return func(rt *router) { rt.health = h }
}

// WithRecipeRoutes mounts the catalogue and per-recipe estimates under /api/v1/recipes.
func WithRecipeRoutes(reg RouteRegistrar) Option {
	return func(rt *router) { rt.recipes = reg }
}

// WithMealPlanRoutes receives the /api/v1 router itself because meal plans are a custom
// method, /meal-plans:estimate, rather than a resource.
func WithMealPlanRoutes(reg RouteRegistrar) Option {
	return func(rt *router) { rt.mealPlans = reg }
}

// WithMeRoutes mounts the signed-in user's experiences and recipes under /api/v1/me.
func WithMeRoutes(reg RouteRegistrar) Option {
	return func(rt *router) { rt.me = reg }
}

// NewRouter wires probes at the root and the API under /api/v1. Route groups without a
// registrar answer 501 so clients can tell a disabled feature from a wrong path.
func NewRouter(opts ...Option) chi.Router {
	rt := &router{}
	for _, opt := range opts {
		if opt != nil {
			opt(rt)
		}
	}
	if rt.health == nil {
		rt.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Timeout(requestTimeout))
	for _, mw := range rt.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", "no route for "+req.URL.Path, http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", req.Method+" is not allowed on "+req.URL.Path, http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)

	r.Route(apiPrefix, func(api chi.Router) {
		api.Route("/recipes", group(rt.recipes, "recipes"))
		api.Route("/me", group(rt.me, "me"))
		if rt.mealPlans != nil {
			rt.mealPlans(api)
		} else {
			api.HandleFunc("/meal-plans:estimate", notImplemented("meal plans"))
		}
	})
	return r
}

func group(reg RouteRegistrar, name string) func(chi.Router) {
	if reg != nil {
		return reg
	}
	return func(r chi.Router) {
		h := notImplemented(name)
		r.HandleFunc("/", h)
		r.HandleFunc("/*", h)
	}
}

func notImplemented(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", name+" routes are not enabled", http.StatusNotImplemented))
	}
}
