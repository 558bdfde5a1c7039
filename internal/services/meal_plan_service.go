package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/homechef/api/internal/format"
)

const (
	defaultMealPlanMaxEntries  = 14
	defaultMealPlanConcurrency = 4
)

// MealPlanServiceDeps bundles collaborators required to construct a MealPlanService.
type MealPlanServiceDeps struct {
	Estimates   EstimateService
	Currency    format.Currency
	MaxEntries  int
	Concurrency int
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type mealPlanService struct {
	estimates   EstimateService
	currency    format.Currency
	maxEntries  int
	concurrency int
	logger      func(context.Context, string, map[string]any)
}

var _ MealPlanService = (*mealPlanService)(nil)

// NewMealPlanService wires meal planning on top of the estimate service.
func NewMealPlanService(deps MealPlanServiceDeps) (MealPlanService, error) {
	if deps.Estimates == nil {
		return nil, errors.New("meal plan service: estimate service is required")
	}
	maxEntries := deps.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMealPlanMaxEntries
	}
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultMealPlanConcurrency
	}
	currency := deps.Currency
	if currency.Symbol() == "" {
		currency = format.MustCurrency(format.DefaultCurrency, format.DefaultLocale)
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &mealPlanService{
		estimates:   deps.Estimates,
		currency:    currency,
		maxEntries:  maxEntries,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// PlanMeals estimates every entry concurrently and totals the plan. The first failing entry
// cancels the rest and is reported as a *MealPlanEntryError.
func (s *mealPlanService) PlanMeals(ctx context.Context, cmd MealPlanCommand) (MealPlan, error) {
	if len(cmd.Entries) == 0 {
		return MealPlan{}, fmt.Errorf("%w: meal plan has no entries", ErrInvalidInput)
	}
	if len(cmd.Entries) > s.maxEntries {
		return MealPlan{}, fmt.Errorf("%w: meal plan has %d entries, at most %d allowed", ErrInvalidInput, len(cmd.Entries), s.maxEntries)
	}
	if cmd.Budget < 0 {
		return MealPlan{}, fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}

	results := make([]Estimate, len(cmd.Entries))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, entry := range cmd.Entries {
		group.Go(func() error {
			estimate, err := s.estimates.Estimate(groupCtx, EstimateCommand{
				RecipeID: entry.RecipeID,
				EstimateOptions: EstimateOptions{
					People:      entry.People,
					Repetitions: entry.Repetitions,
				},
			})
			if err != nil {
				return &MealPlanEntryError{Index: i, RecipeID: entry.RecipeID, Err: err}
			}
			results[i] = estimate
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		s.logger(ctx, "mealplan.entry_failed", map[string]any{"entries": len(cmd.Entries), "error": err})
		return MealPlan{}, err
	}

	plan := MealPlan{
		Entries:  results,
		Budget:   cmd.Budget,
		Currency: s.currency.Code(),
	}
	for _, estimate := range results {
		plan.TotalCost += estimate.TotalCost
		plan.TotalTimeMinutes += estimate.TotalTimeMinutes
	}
	plan.TotalCostDisplay = s.currency.Format(plan.TotalCost)
	plan.BudgetExceeded = cmd.Budget > 0 && plan.TotalCost > cmd.Budget
	return plan, nil
}
