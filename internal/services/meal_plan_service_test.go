package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homechef/api/internal/estimator"
)

func newTestMealPlanService(t *testing.T, deps MealPlanServiceDeps) MealPlanService {
	t.Helper()
	if deps.Estimates == nil {
		deps.Estimates = newTestEstimateService(t, EstimateServiceDeps{})
	}
	if deps.Currency.Symbol() == "" {
		deps.Currency = testCurrency
	}
	svc, err := NewMealPlanService(deps)
	require.NoError(t, err)
	return svc
}

func TestMealPlanTotalsEntriesInOrder(t *testing.T) {
	t.Parallel()

	svc := newTestMealPlanService(t, MealPlanServiceDeps{})
	plan, err := svc.PlanMeals(context.Background(), MealPlanCommand{
		Entries: []MealPlanEntry{
			{RecipeID: "koki", People: 4, Repetitions: 2},
			{RecipeID: "poulet-dg", People: 8, Repetitions: 1},
			{RecipeID: "koki", People: 2, Repetitions: 1},
		},
		Budget: 8000,
	})
	require.NoError(t, err)

	require.Len(t, plan.Entries, 3)
	require.Equal(t, "koki", plan.Entries[0].RecipeID)
	require.Equal(t, "poulet-dg", plan.Entries[1].RecipeID)
	require.Equal(t, 2, plan.Entries[2].TargetPeople)
	require.Equal(t, 2000.0+6000.0+500.0, plan.TotalCost)
	require.Equal(t, 180+120+90, plan.TotalTimeMinutes)
	require.Equal(t, "8,500 FCFA", plan.TotalCostDisplay)
	require.Equal(t, "XAF", plan.Currency)
	require.True(t, plan.BudgetExceeded)
}

func TestMealPlanWithoutBudgetNeverExceeds(t *testing.T) {
	t.Parallel()

	svc := newTestMealPlanService(t, MealPlanServiceDeps{})
	plan, err := svc.PlanMeals(context.Background(), MealPlanCommand{
		Entries: []MealPlanEntry{{RecipeID: "poulet-dg", People: 20, Repetitions: 10}},
	})
	require.NoError(t, err)
	require.False(t, plan.BudgetExceeded)
}

func TestMealPlanReportsFailingEntry(t *testing.T) {
	t.Parallel()

	recorder := &eventRecorder{}
	svc := newTestMealPlanService(t, MealPlanServiceDeps{Logger: recorder.log})
	_, err := svc.PlanMeals(context.Background(), MealPlanCommand{
		Entries: []MealPlanEntry{
			{RecipeID: "koki", People: 4, Repetitions: 1},
			{RecipeID: "koki", People: 0, Repetitions: 1},
		},
	})
	var entryErr *MealPlanEntryError
	require.True(t, errors.As(err, &entryErr), "expected entry error, got %v", err)
	require.Equal(t, 1, entryErr.Index)
	require.Equal(t, "koki", entryErr.RecipeID)
	verr, ok := estimator.IsValidationError(err)
	require.True(t, ok)
	require.Equal(t, estimator.FieldTargetPeople, verr.Field)
	require.Equal(t, []string{"mealplan.entry_failed"}, recorder.names())

	_, err = svc.PlanMeals(context.Background(), MealPlanCommand{
		Entries: []MealPlanEntry{{RecipeID: "missing", People: 2, Repetitions: 1}},
	})
	require.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestMealPlanRejectsBadCommands(t *testing.T) {
	t.Parallel()

	svc := newTestMealPlanService(t, MealPlanServiceDeps{MaxEntries: 2})
	ctx := context.Background()
	entry := MealPlanEntry{RecipeID: "koki", People: 2, Repetitions: 1}

	_, err := svc.PlanMeals(ctx, MealPlanCommand{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.PlanMeals(ctx, MealPlanCommand{Entries: []MealPlanEntry{entry, entry, entry}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.PlanMeals(ctx, MealPlanCommand{Entries: []MealPlanEntry{entry}, Budget: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

type countingEstimates struct {
	EstimateService

	mu       sync.Mutex
	inFlight int32
	peak     int32
	release  chan struct{}
}

func (c *countingEstimates) Estimate(ctx context.Context, cmd EstimateCommand) (Estimate, error) {
	current := atomic.AddInt32(&c.inFlight, 1)
	c.mu.Lock()
	if current > c.peak {
		c.peak = current
	}
	c.mu.Unlock()
	<-c.release
	atomic.AddInt32(&c.inFlight, -1)
	return c.EstimateService.Estimate(ctx, cmd)
}

func TestMealPlanBoundsConcurrency(t *testing.T) {
	t.Parallel()

	counting := &countingEstimates{
		EstimateService: newTestEstimateService(t, EstimateServiceDeps{}),
		release:         make(chan struct{}),
	}
	svc := newTestMealPlanService(t, MealPlanServiceDeps{Estimates: counting, Concurrency: 2})

	entries := make([]MealPlanEntry, 6)
	for i := range entries {
		entries[i] = MealPlanEntry{RecipeID: "koki", People: 2, Repetitions: 1}
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.PlanMeals(context.Background(), MealPlanCommand{Entries: entries})
		done <- err
	}()
	for range entries {
		counting.release <- struct{}{}
	}
	require.NoError(t, <-done)

	counting.mu.Lock()
	defer counting.mu.Unlock()
	require.LessOrEqual(t, counting.peak, int32(2))
	require.Positive(t, counting.peak)
}
