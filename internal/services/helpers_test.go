package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/format"
	"github.com/homechef/api/internal/repositories"
	"github.com/homechef/api/internal/repositories/memory"
)

var testCurrency = format.MustCurrency("XAF", "en")

func testEstimator(t *testing.T, variation estimator.VariationSource) *estimator.Estimator {
	t.Helper()
	prices, err := estimator.NewPriceTable([]estimator.PriceRule{
		{Keyword: "chicken", Category: estimator.CategoryProteins, Price: 1500},
		{Keyword: "plantain", Category: estimator.CategoryGrains, Price: 400},
	}, 500)
	require.NoError(t, err)
	if variation == nil {
		variation = estimator.NoVariation
	}
	est, err := estimator.New(estimator.Deps{
		Config:    estimator.Config{Prices: prices, VariationBand: 0.1},
		Variation: variation,
	})
	require.NoError(t, err)
	return est
}

// pouletDG costs 3000 FCFA and takes 60 minutes for its 4 servings.
func pouletDG() domain.Recipe {
	return domain.Recipe{
		ID:       "poulet-dg",
		Name:     "Poulet DG",
		Servings: 4,
		PrepTime: 20,
		CookTime: 40,
		Ingredients: []domain.Ingredient{
			{ID: "poulet-dg-1", Name: "Chicken", Quantity: 1, Unit: "kg"},
			{ID: "poulet-dg-2", Name: "Ripe plantain", Quantity: 3.75, Unit: "kg"},
		},
	}
}

// koki costs 500 FCFA and takes 90 minutes for its 2 servings.
func koki() domain.Recipe {
	return domain.Recipe{
		ID:       "koki",
		Name:     "Koki",
		Servings: 2,
		PrepTime: 30,
		CookTime: 60,
		Ingredients: []domain.Ingredient{
			{ID: "koki-1", Name: "Black-eyed beans", Quantity: 1, Unit: "kg"},
		},
	}
}

func brokenRecipe() domain.Recipe {
	return domain.Recipe{ID: "broken", Name: "Broken", Servings: 0}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

type recordedEvent struct {
	name   string
	fields map[string]any
}

type eventRecorder struct {
	events []recordedEvent
}

func (r *eventRecorder) log(_ context.Context, event string, fields map[string]any) {
	r.events = append(r.events, recordedEvent{name: event, fields: fields})
}

func (r *eventRecorder) names() []string {
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.name)
	}
	return names
}

func newTestEstimateService(t *testing.T, deps EstimateServiceDeps) *estimateService {
	t.Helper()
	if deps.Recipes == nil {
		deps.Recipes = memory.NewRecipeStore(pouletDG(), koki(), brokenRecipe())
	}
	if deps.Estimator == nil {
		deps.Estimator = testEstimator(t, nil)
	}
	if deps.Currency.Symbol() == "" {
		deps.Currency = testCurrency
	}
	svc, err := newEstimateService(deps)
	require.NoError(t, err)
	return svc
}

type failingRecipes struct{}

func (failingRecipes) FindByID(context.Context, string) (domain.Recipe, error) {
	return domain.Recipe{}, repositories.NewStoreError("recipes.find", repositories.ErrorKindUnavailable, errors.New("deadline exceeded"))
}

func (failingRecipes) List(context.Context, domain.Pagination) (domain.CursorPage[domain.Recipe], error) {
	return domain.CursorPage[domain.Recipe]{}, repositories.NewStoreError("recipes.list", repositories.ErrorKindUnavailable, errors.New("deadline exceeded"))
}

func (failingRecipes) Upsert(context.Context, domain.Recipe) error {
	return repositories.NewStoreError("recipes.upsert", repositories.ErrorKindUnavailable, errors.New("deadline exceeded"))
}
