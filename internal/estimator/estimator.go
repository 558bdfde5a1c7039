package estimator

import (
	"fmt"
	"math"
	"strings"

	"github.com/homechef/api/internal/domain"
)

// Request bounds.
const (
	MinTargetPeople = 1
	MaxTargetPeople = 20
	MinRepetitions  = 1
	MaxRepetitions  = 10
)

// DefaultMinCost is the floor applied to every total, in FCFA.
const DefaultMinCost = 50

// MaxIngredientQuantity bounds a single ingredient quantity in its recipe unit.
const MaxIngredientQuantity = 1e6

// maxTotalCost keeps totals representable as int64 minor units in every currency.
const maxTotalCost = 1e15

// UnsetVariationBand asks New for DefaultVariationBand. A zero band disables variation.
const UnsetVariationBand = -1

// Config tunes an Estimator. Zero values fall back to the built-in defaults, except
// VariationBand where zero means no variation and UnsetVariationBand selects the default.
type Config struct {
	Prices        PriceTable
	Units         UnitTable
	TimePolicy    TimePolicy
	VariationBand float64
	MinCost       float64
	// OverheadRate adds a share of the repeated total for utilities and transport. Zero disables it.
	OverheadRate float64
}

// Deps bundles the collaborators required to build an Estimator.
type Deps struct {
	Config    Config
	Variation VariationSource
}

// Estimator computes scaled ingredient lists, cost and time for a recipe.
// It is immutable after construction and safe for concurrent use.
type Estimator struct {
	prices       PriceTable
	units        UnitTable
	timePolicy   TimePolicy
	band         float64
	minCost      float64
	overheadRate float64
	variation    VariationSource
}

// Request describes one estimation.
type Request struct {
	Recipe       domain.Recipe
	TargetPeople int
	Repetitions  int
	// Budget is an optional ceiling in FCFA; zero means no ceiling.
	Budget float64
}

// AdjustedIngredient is one ingredient scaled to the requested headcount.
type AdjustedIngredient struct {
	Name             string
	Unit             string
	BaseQuantity     float64
	AdjustedQuantity float64
	// BaseUnits is AdjustedQuantity converted with the unit table.
	BaseUnits    float64
	UnitKnown    bool
	UnitPrice    float64
	Category     Category
	Keyword      string
	DefaultPrice bool
	LineCost     float64
}

// Result holds every intermediate figure of an estimation. Amounts are unrounded.
type Result struct {
	RecipeID            string
	RecipeName          string
	TargetPeople        int
	Repetitions         int
	AdjustedIngredients []AdjustedIngredient
	IngredientsSubtotal float64
	RepeatedTotal       float64
	Overhead            float64
	Variation           float64
	VariationAmount     float64
	TotalCost           float64
	FloorApplied        bool
	CostPerServing      float64
	BaseTimeMinutes     int
	TotalTimeMinutes    int
	TimePolicy          TimePolicy
	Budget              float64
	BudgetExceeded      bool
}

// New validates deps.Config and fills defaults.
func New(deps Deps) (*Estimator, error) {
	cfg := deps.Config
	if cfg.Prices.IsZero() {
		cfg.Prices = DefaultPriceTable()
	}
	if cfg.Units.IsZero() {
		cfg.Units = DefaultUnitTable()
	}
	if cfg.TimePolicy == "" {
		cfg.TimePolicy = TimePolicyLinear
	}
	if _, err := ParseTimePolicy(string(cfg.TimePolicy)); err != nil {
		return nil, err
	}
	if cfg.VariationBand == UnsetVariationBand {
		cfg.VariationBand = DefaultVariationBand
	}
	if cfg.VariationBand < 0 || cfg.VariationBand >= 1 || math.IsNaN(cfg.VariationBand) {
		return nil, fmt.Errorf("%w: variation band must be in [0,1), got %v", ErrInvalidConfig, cfg.VariationBand)
	}
	if cfg.MinCost == 0 {
		cfg.MinCost = DefaultMinCost
	}
	if !positiveFinite(cfg.MinCost) {
		return nil, fmt.Errorf("%w: minimum cost must be positive, got %v", ErrInvalidConfig, cfg.MinCost)
	}
	if cfg.OverheadRate < 0 || math.IsNaN(cfg.OverheadRate) || math.IsInf(cfg.OverheadRate, 0) {
		return nil, fmt.Errorf("%w: overhead rate must be non-negative, got %v", ErrInvalidConfig, cfg.OverheadRate)
	}

	variation := deps.Variation
	if variation == nil {
		variation = NewRandomVariation()
	}

	return &Estimator{
		prices:       cfg.Prices,
		units:        cfg.Units,
		timePolicy:   cfg.TimePolicy,
		band:         cfg.VariationBand,
		minCost:      cfg.MinCost,
		overheadRate: cfg.OverheadRate,
		variation:    variation,
	}, nil
}

// WithVariation returns a copy of the estimator drawing from src.
func (e *Estimator) WithVariation(src VariationSource) *Estimator {
	clone := *e
	if src == nil {
		src = NoVariation
	}
	clone.variation = src
	return &clone
}

// Config returns the effective configuration.
func (e *Estimator) Config() Config {
	return Config{
		Prices:        e.prices,
		Units:         e.units,
		TimePolicy:    e.timePolicy,
		VariationBand: e.band,
		MinCost:       e.minCost,
		OverheadRate:  e.overheadRate,
	}
}

// Validate checks the caller-controlled fields of req. It returns a *ValidationError.
func (e *Estimator) Validate(req Request) error {
	if req.TargetPeople < MinTargetPeople || req.TargetPeople > MaxTargetPeople {
		return &ValidationError{Field: FieldTargetPeople, Value: float64(req.TargetPeople), Min: MinTargetPeople, Max: MaxTargetPeople}
	}
	if req.Repetitions < MinRepetitions || req.Repetitions > MaxRepetitions {
		return &ValidationError{Field: FieldRepetitions, Value: float64(req.Repetitions), Min: MinRepetitions, Max: MaxRepetitions}
	}
	if req.Budget < 0 || math.IsNaN(req.Budget) || math.IsInf(req.Budget, 0) {
		return &ValidationError{Field: FieldBudget, Value: req.Budget, Min: 0}
	}
	return nil
}

// CheckRecipe rejects recipe data that cannot be scaled. The returned error wraps ErrPrecondition.
func CheckRecipe(recipe domain.Recipe) error {
	if recipe.Servings <= 0 {
		return preconditionf("recipe %q has %d servings", recipe.ID, recipe.Servings)
	}
	if len(recipe.Ingredients) == 0 {
		return preconditionf("recipe %q has no ingredients", recipe.ID)
	}
	if recipe.PrepTime < 0 || recipe.CookTime < 0 {
		return preconditionf("recipe %q has negative preparation or cooking time", recipe.ID)
	}
	for i, ing := range recipe.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return preconditionf("recipe %q ingredient %d has no name", recipe.ID, i)
		}
		if !positiveFinite(ing.Quantity) || ing.Quantity > MaxIngredientQuantity {
			return preconditionf("recipe %q ingredient %q has quantity %v", recipe.ID, ing.Name, ing.Quantity)
		}
	}
	return nil
}

// Estimate validates req, checks the recipe and computes the result.
func (e *Estimator) Estimate(req Request) (Result, error) {
	if err := e.Validate(req); err != nil {
		return Result{}, err
	}
	if err := CheckRecipe(req.Recipe); err != nil {
		return Result{}, err
	}
	return e.compute(req)
}

func (e *Estimator) compute(req Request) (Result, error) {
	recipe := req.Recipe
	adjusted := make([]AdjustedIngredient, 0, len(recipe.Ingredients))
	subtotal := 0.0
	for _, ing := range recipe.Ingredients {
		scaled := ScaleQuantity(ing.Quantity, req.TargetPeople, recipe.Servings)
		factor, known := e.units.Factor(ing.Unit)
		baseUnits := scaled * factor
		match := e.prices.Resolve(ing.Name)
		line := baseUnits * match.Price
		subtotal += line
		adjusted = append(adjusted, AdjustedIngredient{
			Name:             ing.Name,
			Unit:             ing.Unit,
			BaseQuantity:     ing.Quantity,
			AdjustedQuantity: scaled,
			BaseUnits:        baseUnits,
			UnitKnown:        known,
			UnitPrice:        match.Price,
			Category:         match.Category,
			Keyword:          match.Keyword,
			DefaultPrice:     match.Default,
			LineCost:         line,
		})
	}

	repeated := subtotal * float64(req.Repetitions)
	overhead := 0.0
	if e.overheadRate > 0 {
		overhead = repeated * e.overheadRate
	}
	withOverhead := repeated + overhead

	v := clampVariation(e.variation.Draw(e.band), e.band)
	total := withOverhead * (1 + v)
	if math.IsNaN(total) || total > maxTotalCost {
		return Result{}, preconditionf("recipe %q total %v is out of range", recipe.ID, total)
	}

	floorApplied := false
	if total < e.minCost {
		total = e.minCost
		floorApplied = true
	}

	baseTime := recipe.TotalTime()
	result := Result{
		RecipeID:            recipe.ID,
		RecipeName:          recipe.Name,
		TargetPeople:        req.TargetPeople,
		Repetitions:         req.Repetitions,
		AdjustedIngredients: adjusted,
		IngredientsSubtotal: subtotal,
		RepeatedTotal:       repeated,
		Overhead:            overhead,
		Variation:           v,
		VariationAmount:     withOverhead * v,
		TotalCost:           total,
		FloorApplied:        floorApplied,
		CostPerServing:      total / float64(req.TargetPeople*req.Repetitions),
		BaseTimeMinutes:     baseTime,
		TotalTimeMinutes:    e.timePolicy.Scale(baseTime, req.TargetPeople, recipe.Servings),
		TimePolicy:          e.timePolicy,
		Budget:              req.Budget,
	}
	if req.Budget > 0 && total > req.Budget {
		result.BudgetExceeded = true
	}
	return result, nil
}

// Clone returns a deep copy of the result.
func (r Result) Clone() Result {
	out := r
	if r.AdjustedIngredients != nil {
		out.AdjustedIngredients = make([]AdjustedIngredient, len(r.AdjustedIngredients))
		copy(out.AdjustedIngredients, r.AdjustedIngredients)
	}
	return out
}
