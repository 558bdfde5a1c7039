package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/format"
	"github.com/homechef/api/internal/platform/observability"
	"github.com/homechef/api/internal/repositories"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 10000
)

// EstimateServiceDeps bundles collaborators required to construct an EstimateService.
type EstimateServiceDeps struct {
	Recipes   repositories.RecipeRepository
	Estimator *estimator.Estimator
	Currency  format.Currency
	Metrics   *observability.EstimateMetrics
	Clock     func() time.Time
	// SessionTTL evicts sessions idle for longer than this.
	SessionTTL  time.Duration
	MaxSessions int
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type sessionKey struct {
	userID   string
	recipeID string
}

type sessionEntry struct {
	session  *estimator.Session
	lastUsed time.Time
}

type estimateService struct {
	recipes     repositories.RecipeRepository
	estimator   *estimator.Estimator
	currency    format.Currency
	metrics     *observability.EstimateMetrics
	clock       func() time.Time
	ttl         time.Duration
	maxSessions int
	logger      func(context.Context, string, map[string]any)

	mu       sync.Mutex
	sessions map[sessionKey]*sessionEntry
}

var _ EstimateService = (*estimateService)(nil)

// NewEstimateService wires the estimator with the recipe catalogue.
func NewEstimateService(deps EstimateServiceDeps) (EstimateService, error) {
	svc, err := newEstimateService(deps)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newEstimateService(deps EstimateServiceDeps) (*estimateService, error) {
	if deps.Recipes == nil {
		return nil, errors.New("estimate service: recipe repository is required")
	}
	if deps.Estimator == nil {
		return nil, errors.New("estimate service: estimator is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	maxSessions := deps.MaxSessions
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	currency := deps.Currency
	if currency.Symbol() == "" {
		currency = format.MustCurrency(format.DefaultCurrency, format.DefaultLocale)
	}
	return &estimateService{
		recipes:   deps.Recipes,
		estimator: deps.Estimator,
		currency:  currency,
		metrics:   deps.Metrics,
		clock: func() time.Time {
			return clock().UTC()
		},
		ttl:         ttl,
		maxSessions: maxSessions,
		logger:      logger,
		sessions:    make(map[sessionKey]*sessionEntry),
	}, nil
}

// Estimate loads the catalogue recipe and estimates it.
func (s *estimateService) Estimate(ctx context.Context, cmd EstimateCommand) (Estimate, error) {
	if err := s.estimator.Validate(cmd.request(Recipe{})); err != nil {
		s.record(ctx, observability.OutcomeInvalid, 0, 0)
		return Estimate{}, err
	}
	recipe, err := s.loadRecipe(ctx, cmd.RecipeID)
	if err != nil {
		return Estimate{}, err
	}
	return s.EstimateRecipe(ctx, recipe, cmd.EstimateOptions)
}

// EstimateRecipe estimates a recipe the caller already holds, such as a personal recipe.
func (s *estimateService) EstimateRecipe(ctx context.Context, recipe Recipe, opts EstimateOptions) (Estimate, error) {
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}
	start := time.Now()
	result, err := s.estimator.Estimate(opts.request(recipe))
	elapsed := time.Since(start)
	if err != nil {
		s.fail(ctx, recipe.ID, err, elapsed)
		return Estimate{}, err
	}
	s.record(ctx, observability.OutcomeOK, result.TotalCost, elapsed)
	return s.present(result, 0), nil
}

// EstimateInSession orders the request inside the caller's session for the recipe. Results of
// requests overtaken by a newer sequence are discarded with estimator.ErrSuperseded.
func (s *estimateService) EstimateInSession(ctx context.Context, cmd SessionEstimateCommand) (Estimate, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Estimate{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	recipe, err := s.loadRecipe(ctx, cmd.RecipeID)
	if err != nil {
		return Estimate{}, err
	}

	session := s.session(sessionKey{userID: userID, recipeID: recipe.ID})
	start := time.Now()
	result, seq, err := session.Submit(ctx, cmd.Sequence, cmd.request(recipe))
	elapsed := time.Since(start)
	if err != nil {
		s.fail(ctx, recipe.ID, err, elapsed)
		return Estimate{}, err
	}
	s.record(ctx, observability.OutcomeOK, result.TotalCost, elapsed)
	return s.present(result, seq), nil
}

// InvalidateSession discards the published result and any in-flight request for the user and
// recipe. The session itself stays so later requests are still ordered against its sequence.
// Unknown sessions are ignored.
func (s *estimateService) InvalidateSession(ctx context.Context, userID, recipeID string) error {
	key := sessionKey{userID: strings.TrimSpace(userID), recipeID: strings.TrimSpace(recipeID)}
	if key.userID == "" || key.recipeID == "" {
		return fmt.Errorf("%w: user id and recipe id are required", ErrInvalidInput)
	}
	s.mu.Lock()
	entry, ok := s.sessions[key]
	s.mu.Unlock()
	if ok {
		entry.session.Invalidate()
		s.logger(ctx, "estimate.session.invalidated", map[string]any{"recipeId": key.recipeID})
	}
	return nil
}

func (s *estimateService) session(key sessionKey) *estimator.Session {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(now)
	entry, ok := s.sessions[key]
	if !ok {
		entry = &sessionEntry{session: estimator.NewSession(s.estimator, estimator.WithSessionClock(s.clock))}
		s.sessions[key] = entry
	}
	entry.lastUsed = now
	return entry.session
}

// evictLocked drops idle sessions, then the least recently used ones beyond the cap. Sessions
// with a request in flight are never evicted, so the cap may be exceeded while they run.
func (s *estimateService) evictLocked(now time.Time) {
	for key, entry := range s.sessions {
		if now.Sub(entry.lastUsed) > s.ttl && !busy(entry) {
			delete(s.sessions, key)
		}
	}
	for len(s.sessions) >= s.maxSessions {
		var (
			oldestKey sessionKey
			oldest    time.Time
			found     bool
		)
		for key, entry := range s.sessions {
			if busy(entry) {
				continue
			}
			if !found || entry.lastUsed.Before(oldest) {
				oldestKey, oldest, found = key, entry.lastUsed, true
			}
		}
		if !found {
			return
		}
		delete(s.sessions, oldestKey)
	}
}

func busy(entry *sessionEntry) bool {
	state := entry.session.State()
	return state == estimator.StateValidating || state == estimator.StateComputing
}

func (s *estimateService) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *estimateService) loadRecipe(ctx context.Context, recipeID string) (Recipe, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return Recipe{}, fmt.Errorf("%w: recipe id is required", ErrInvalidInput)
	}
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		err = translateRepoError(err, ErrRecipeNotFound)
		if errors.Is(err, ErrRecipeNotFound) {
			s.record(ctx, observability.OutcomeNotFound, 0, 0)
		}
		return Recipe{}, err
	}
	return recipe, nil
}

func (s *estimateService) present(result estimator.Result, seq uint64) Estimate {
	return Estimate{
		Result:                result,
		Currency:              s.currency.Code(),
		TotalCostDisplay:      s.currency.Format(result.TotalCost),
		CostPerServingDisplay: s.currency.Format(result.CostPerServing),
		Sequence:              seq,
		EstimatedAt:           s.clock(),
	}
}

func (s *estimateService) fail(ctx context.Context, recipeID string, err error, elapsed time.Duration) {
	outcome := observability.OutcomeError
	switch {
	case errors.Is(err, estimator.ErrSuperseded):
		outcome = observability.OutcomeSuperseded
	case errors.Is(err, estimator.ErrPrecondition):
		outcome = observability.OutcomeInvalid
		s.logger(ctx, "estimate.recipe_rejected", map[string]any{"recipeId": recipeID, "error": err})
	default:
		if _, ok := estimator.IsValidationError(err); ok {
			outcome = observability.OutcomeInvalid
		}
	}
	s.record(ctx, outcome, 0, elapsed)
}

func (s *estimateService) record(ctx context.Context, outcome string, cost float64, elapsed time.Duration) {
	s.metrics.Record(ctx, outcome, string(s.estimator.Config().TimePolicy), cost, elapsed)
}

func (o EstimateOptions) request(recipe Recipe) estimator.Request {
	return estimator.Request{
		Recipe:       recipe,
		TargetPeople: o.People,
		Repetitions:  o.Repetitions,
		Budget:       o.Budget,
	}
}
