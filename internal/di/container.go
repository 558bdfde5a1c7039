package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/format"
	"github.com/homechef/api/internal/platform/config"
	pfirestore "github.com/homechef/api/internal/platform/firestore"
	"github.com/homechef/api/internal/platform/idempotency"
	"github.com/homechef/api/internal/platform/observability"
	"github.com/homechef/api/internal/repositories"
	firestoreRepo "github.com/homechef/api/internal/repositories/firestore"
	"github.com/homechef/api/internal/repositories/memory"
	"github.com/homechef/api/internal/services"
)

const (
	healthPingCollection = "recipes"
	seedTimeout          = 30 * time.Second
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Recipes     services.RecipeService
	Estimates   services.EstimateService
	MealPlans   services.MealPlanService
	Experiences services.ExperienceService
	UserRecipes services.UserRecipeService
	System      services.SystemService
}

// Container wires repositories, the estimator and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Estimator    *estimator.Estimator
	Currency     format.Currency
	Services     Services
}

// Option customises container construction.
type Option func(*options)

type options struct {
	estimator *estimator.Estimator
	logger    *zap.Logger
	meter     metric.Meter
	build     services.BuildInfo
	clock     func() time.Time
}

// WithEstimator supplies a pre-built estimator instead of building one from configuration.
func WithEstimator(est *estimator.Estimator) Option {
	return func(o *options) {
		o.estimator = est
	}
}

// WithLogger routes service events to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeter registers estimate metrics on meter rather than the global provider.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithBuildInfo sets the build metadata reported by the system service.
func WithBuildInfo(build services.BuildInfo) Option {
	return func(o *options) {
		o.build = build
	}
}

// WithClock overrides the time source shared by every service.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// NewContainer constructs the runtime dependencies. Production wiring provides the Firestore
// registry, while tests can supply the in-memory one.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...Option) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	est := o.estimator
	if est == nil {
		built, err := NewEstimator(cfg.Estimator, nil)
		if err != nil {
			return nil, err
		}
		est = built
	}
	currency, err := format.NewCurrency(cfg.Estimator.Currency, cfg.Estimator.Locale)
	if err != nil {
		return nil, fmt.Errorf("build currency formatter: %w", err)
	}

	svc, err := buildServices(ctx, reg, cfg, est, currency, o)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Estimator:    est,
		Currency:     currency,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(_ context.Context, reg repositories.Registry, cfg config.Config, est *estimator.Estimator, currency format.Currency, o options) (Services, error) {
	var svc Services

	recipeSvc, err := services.NewRecipeService(services.RecipeServiceDeps{Recipes: reg.Recipes()})
	if err != nil {
		return Services{}, fmt.Errorf("build recipe service: %w", err)
	}
	svc.Recipes = recipeSvc

	metrics, err := observability.NewEstimateMetrics(o.meter)
	if err != nil {
		return Services{}, fmt.Errorf("build estimate metrics: %w", err)
	}
	estimateSvc, err := services.NewEstimateService(services.EstimateServiceDeps{
		Recipes:    reg.Recipes(),
		Estimator:  est,
		Currency:   currency,
		Metrics:    metrics,
		Clock:      o.clock,
		SessionTTL: cfg.Estimator.SessionTTL,
		Logger:     observability.ServiceLogger(o.logger, "estimate"),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build estimate service: %w", err)
	}
	svc.Estimates = estimateSvc

	mealPlanSvc, err := services.NewMealPlanService(services.MealPlanServiceDeps{
		Estimates:   estimateSvc,
		Currency:    currency,
		MaxEntries:  cfg.MealPlan.MaxEntries,
		Concurrency: cfg.MealPlan.Concurrency,
		Logger:      observability.ServiceLogger(o.logger, "meal_plan"),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build meal plan service: %w", err)
	}
	svc.MealPlans = mealPlanSvc

	if experienceRepo := reg.Experiences(); experienceRepo != nil {
		experienceSvc, err := services.NewExperienceService(services.ExperienceServiceDeps{
			Experiences: experienceRepo,
			Recipes:     reg.Recipes(),
			Estimator:   est,
			Clock:       o.clock,
			Logger:      observability.ServiceLogger(o.logger, "experience"),
		})
		if err != nil {
			return Services{}, fmt.Errorf("build experience service: %w", err)
		}
		svc.Experiences = experienceSvc
	}

	if userRecipeRepo := reg.UserRecipes(); userRecipeRepo != nil {
		userRecipeSvc, err := services.NewUserRecipeService(services.UserRecipeServiceDeps{
			Recipes:   userRecipeRepo,
			Estimates: estimateSvc,
			Clock:     o.clock,
			Logger:    observability.ServiceLogger(o.logger, "user_recipe"),
		})
		if err != nil {
			return Services{}, fmt.Errorf("build user recipe service: %w", err)
		}
		svc.UserRecipes = userRecipeSvc
	}

	if healthRepo := reg.Health(); healthRepo != nil {
		build := o.build
		if build.Environment == "" {
			build.Environment = cfg.Environment
		}
		if build.StartedAt.IsZero() {
			build.StartedAt = o.clock().UTC()
		}
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            o.clock,
			Build:            build,
			Logger:           observability.ServiceLogger(o.logger, "system"),
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}

// NewEstimator builds the estimator from configuration. A nil variation source draws uniformly
// from the configured band.
func NewEstimator(cfg config.EstimatorConfig, variation estimator.VariationSource) (*estimator.Estimator, error) {
	policy, err := estimator.ParseTimePolicy(cfg.TimePolicy)
	if err != nil {
		return nil, err
	}
	estCfg := estimator.Config{
		TimePolicy:    policy,
		VariationBand: cfg.VariationBand,
		MinCost:       cfg.MinCost,
		OverheadRate:  cfg.OverheadRate,
	}
	if path := strings.TrimSpace(cfg.PriceTableFile); path != "" {
		prices, units, err := estimator.LoadTablesFile(path)
		if err != nil {
			return nil, err
		}
		estCfg.Prices = prices
		estCfg.Units = units
	}
	return estimator.New(estimator.Deps{Config: estCfg, Variation: variation})
}

// PriceTableCheck is a critical readiness probe asserting the estimator has reference prices.
func PriceTableCheck(est *estimator.Estimator) repositories.DependencyCheck {
	return repositories.DependencyCheck{
		Name:     "price_table",
		Timeout:  time.Second,
		Critical: true,
		Check: func(context.Context) error {
			if est == nil {
				return errors.New("estimator not configured")
			}
			prices := est.Config().Prices
			if prices.IsZero() {
				return errors.New("no price rules loaded")
			}
			if prices.DefaultPrice() <= 0 {
				return errors.New("default reference price must be positive")
			}
			return nil
		},
	}
}

// Backend is the storage selected by configuration.
type Backend struct {
	Registry    repositories.Registry
	Idempotency idempotency.Store
	// Seeded counts recipes loaded from the seed file.
	Seeded int
}

// OpenBackend opens the configured store. checks are added to the readiness probes alongside the
// Firestore ping when that backend is used.
func OpenBackend(ctx context.Context, cfg config.Config, checks ...repositories.DependencyCheck) (Backend, error) {
	var seed []domain.Recipe
	if path := strings.TrimSpace(cfg.Store.SeedFile); path != "" {
		recipes, err := memory.LoadRecipesFile(path)
		if err != nil {
			return Backend{}, err
		}
		seed = recipes
	}

	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		health, err := healthRepository(checks)
		if err != nil {
			return Backend{}, err
		}
		reg, err := memory.NewRegistry(memory.NewRecipeStore(seed...), health)
		if err != nil {
			return Backend{}, err
		}
		return Backend{Registry: reg, Idempotency: idempotency.NewMemoryStore(), Seeded: len(seed)}, nil

	case config.StoreBackendFirestore, "":
		provider := pfirestore.NewProvider(cfg.Firestore)
		checks = append(checks, repositories.DependencyCheck{
			Name:     "firestore",
			Timeout:  1500 * time.Millisecond,
			Critical: true,
			Check: func(ctx context.Context) error {
				return provider.Ping(ctx, healthPingCollection)
			},
		})
		health, err := healthRepository(checks)
		if err != nil {
			return Backend{}, err
		}
		reg, err := firestoreRepo.NewRegistry(provider, health)
		if err != nil {
			_ = provider.Close(ctx)
			return Backend{}, err
		}
		if len(seed) > 0 {
			seedCtx, cancel := context.WithTimeout(ctx, seedTimeout)
			defer cancel()
			for _, recipe := range seed {
				if err := reg.Recipes().Upsert(seedCtx, recipe); err != nil {
					_ = reg.Close(ctx)
					return Backend{}, fmt.Errorf("seed recipe %s: %w", recipe.ID, err)
				}
			}
		}
		return Backend{Registry: reg, Idempotency: idempotency.NewFirestoreStore(provider), Seeded: len(seed)}, nil

	default:
		return Backend{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func healthRepository(checks []repositories.DependencyCheck) (repositories.HealthRepository, error) {
	if len(checks) == 0 {
		return nil, nil
	}
	return repositories.NewDependencyHealthRepository(checks)
}
