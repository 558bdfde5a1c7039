package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/platform/config"
	"github.com/homechef/api/internal/services"
)

var fixedNow = time.Date(2026, time.March, 14, 18, 30, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Environment: "test",
		Store: config.StoreConfig{
			Backend:  config.StoreBackendMemory,
			SeedFile: "testdata/recipes.yaml",
		},
		Estimator: config.EstimatorConfig{
			PriceTableFile: "testdata/prices.yaml",
			TimePolicy:     "linear",
			VariationBand:  0.1,
			MinCost:        50,
			Currency:       "XAF",
			Locale:         "en",
			SessionTTL:     time.Minute,
		},
		MealPlan: config.MealPlanConfig{MaxEntries: 4, Concurrency: 2},
	}
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	cfg := testConfig()
	est, err := NewEstimator(cfg.Estimator, estimator.FixedVariation(0))
	require.NoError(t, err)

	backend, err := OpenBackend(context.Background(), cfg, PriceTableCheck(est))
	require.NoError(t, err)
	require.Equal(t, 2, backend.Seeded)
	require.NotNil(t, backend.Idempotency)

	container, err := NewContainer(context.Background(), cfg, backend.Registry,
		WithEstimator(est),
		WithMeter(noop.NewMeterProvider().Meter("test")),
		WithClock(func() time.Time { return fixedNow }),
		WithBuildInfo(services.BuildInfo{Version: "1.2.3", CommitSHA: "abc123"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close(context.Background()) })
	return container
}

func TestNewContainerRequiresRegistry(t *testing.T) {
	_, err := NewContainer(context.Background(), testConfig(), nil)
	require.Error(t, err)
}

func TestContainerEstimatesSeededRecipe(t *testing.T) {
	container := newTestContainer(t)
	ctx := context.Background()

	estimate, err := container.Services.Estimates.Estimate(ctx, services.EstimateCommand{
		RecipeID:        "poulet-dg",
		EstimateOptions: services.EstimateOptions{People: 8, Repetitions: 1},
	})
	require.NoError(t, err)
	require.InDelta(t, 4600, estimate.TotalCost, 0.001)
	require.Equal(t, "4,600 FCFA", estimate.TotalCostDisplay)
	require.Equal(t, 120, estimate.TotalTimeMinutes)
	require.Equal(t, "XAF", estimate.Currency)
	require.Len(t, estimate.AdjustedIngredients, 2)
	require.Equal(t, estimator.CategoryProteins, estimate.AdjustedIngredients[0].Category)
	require.Equal(t, fixedNow, estimate.EstimatedAt.UTC())
}

func TestContainerPlansMeals(t *testing.T) {
	container := newTestContainer(t)

	plan, err := container.Services.MealPlans.PlanMeals(context.Background(), services.MealPlanCommand{
		Entries: []services.MealPlanEntry{
			{RecipeID: "poulet-dg", People: 4, Repetitions: 1},
			{RecipeID: "poulet-dg", People: 8, Repetitions: 1},
		},
		Budget: 5000,
	})
	require.NoError(t, err)
	require.Len(t, plan.Entries, 2)
	require.InDelta(t, 6900, plan.TotalCost, 0.001)
	require.True(t, plan.BudgetExceeded)
	require.Equal(t, 180, plan.TotalTimeMinutes)
}

func TestContainerLogsExperienceWithEstimatedFill(t *testing.T) {
	container := newTestContainer(t)
	require.NotNil(t, container.Services.Experiences)

	exp, err := container.Services.Experiences.LogExperience(context.Background(), services.LogExperienceCommand{
		UserID:      "cook-1",
		RecipeID:    "poulet-dg",
		People:      4,
		Repetitions: 1,
		Rating:      5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, exp.ID)
	require.InDelta(t, 2300, exp.EstimatedCost, 0.001)
	require.Equal(t, 60, exp.AdjustedTimeMinutes)
	require.Equal(t, "Poulet DG", exp.RecipeName)
}

func TestContainerReportsHealth(t *testing.T) {
	container := newTestContainer(t)
	require.NotNil(t, container.Services.System)

	report, err := container.Services.System.HealthReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusOK, report.Status)
	require.Equal(t, "1.2.3", report.Version)
	require.Equal(t, "test", report.Environment)
	require.Contains(t, report.Checks, "price_table")
}

func TestNewEstimatorRejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig().Estimator
	cfg.TimePolicy = "exponential"
	_, err := NewEstimator(cfg, nil)
	require.Error(t, err)
}

func TestNewEstimatorRejectsMissingPriceTable(t *testing.T) {
	cfg := testConfig().Estimator
	cfg.PriceTableFile = "testdata/missing.yaml"
	_, err := NewEstimator(cfg, nil)
	require.Error(t, err)
}

func TestPriceTableCheck(t *testing.T) {
	est, err := NewEstimator(testConfig().Estimator, nil)
	require.NoError(t, err)
	check := PriceTableCheck(est)
	require.True(t, check.Critical)
	require.Equal(t, "price_table", check.Name)
	require.NoError(t, check.Check(context.Background()))

	require.Error(t, PriceTableCheck(nil).Check(context.Background()))
}

func TestOpenBackendRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "postgres"
	_, err := OpenBackend(context.Background(), cfg)
	require.ErrorContains(t, err, "unknown store backend")
}

func TestOpenBackendWithoutChecksHasNoSystemService(t *testing.T) {
	cfg := testConfig()
	cfg.Store.SeedFile = ""
	backend, err := OpenBackend(context.Background(), cfg)
	require.NoError(t, err)
	require.Zero(t, backend.Seeded)

	container, err := NewContainer(context.Background(), cfg, backend.Registry, WithMeter(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, err)
	require.Nil(t, container.Services.System)
	require.NotNil(t, container.Services.Recipes)
}
