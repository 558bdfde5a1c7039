package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/repositories"
)

const (
	experienceIDPrefix     = "exp_"
	maxExperienceNotes     = 2000
	maxExperienceRating    = 5
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 50
	// cookedAtSkew tolerates client clocks running slightly ahead.
	cookedAtSkew = 5 * time.Minute
)

// ExperienceServiceDeps bundles collaborators required to construct an ExperienceService.
type ExperienceServiceDeps struct {
	Experiences repositories.ExperienceRepository
	Recipes     repositories.RecipeRepository
	// Estimator fills cost and time the caller left out. Variation is disabled for these fills.
	Estimator   *estimator.Estimator
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type experienceService struct {
	experiences repositories.ExperienceRepository
	recipes     repositories.RecipeRepository
	estimator   *estimator.Estimator
	now         func() time.Time
	newID       func() string
	logger      func(context.Context, string, map[string]any)
}

var _ ExperienceService = (*experienceService)(nil)

// NewExperienceService wires the cooking history.
func NewExperienceService(deps ExperienceServiceDeps) (ExperienceService, error) {
	if deps.Experiences == nil {
		return nil, errors.New("experience service: experience repository is required")
	}
	if deps.Recipes == nil {
		return nil, errors.New("experience service: recipe repository is required")
	}
	if deps.Estimator == nil {
		return nil, errors.New("experience service: estimator is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &experienceService{
		experiences: deps.Experiences,
		recipes:     deps.Recipes,
		estimator:   deps.Estimator.WithVariation(estimator.NoVariation),
		now: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

// LogExperience records a cooking session for a catalogue recipe.
func (s *experienceService) LogExperience(ctx context.Context, cmd LogExperienceCommand) (Experience, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Experience{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	req := estimator.Request{TargetPeople: cmd.People, Repetitions: cmd.Repetitions}
	if err := s.estimator.Validate(req); err != nil {
		return Experience{}, err
	}
	if err := validateRating(cmd.Rating); err != nil {
		return Experience{}, err
	}
	if cmd.EstimatedCost < 0 || math.IsNaN(cmd.EstimatedCost) || math.IsInf(cmd.EstimatedCost, 0) {
		return Experience{}, fmt.Errorf("%w: estimated cost must be a non-negative number", ErrInvalidInput)
	}
	if cmd.AdjustedTimeMinutes < 0 {
		return Experience{}, fmt.Errorf("%w: adjusted time must not be negative", ErrInvalidInput)
	}

	now := s.now()
	cookedAt := cmd.CookedAt.UTC()
	if cmd.CookedAt.IsZero() {
		cookedAt = now
	}
	if cookedAt.After(now.Add(cookedAtSkew)) {
		return Experience{}, fmt.Errorf("%w: cookedAt is in the future", ErrInvalidInput)
	}

	recipeID := strings.TrimSpace(cmd.RecipeID)
	if recipeID == "" {
		return Experience{}, fmt.Errorf("%w: recipe id is required", ErrInvalidInput)
	}
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return Experience{}, translateRepoError(err, ErrRecipeNotFound)
	}

	experience := Experience{
		ID:                  experienceIDPrefix + strings.ToLower(s.newID()),
		UserID:              userID,
		RecipeID:            recipe.ID,
		RecipeName:          recipe.Name,
		People:              cmd.People,
		Repetitions:         cmd.Repetitions,
		EstimatedCost:       cmd.EstimatedCost,
		AdjustedTimeMinutes: cmd.AdjustedTimeMinutes,
		Notes:               sanitizeText(cmd.Notes, maxExperienceNotes),
		Rating:              cmd.Rating,
		CookedAt:            cookedAt,
		UpdatedAt:           now,
	}

	if experience.EstimatedCost == 0 || experience.AdjustedTimeMinutes == 0 {
		req.Recipe = recipe
		result, err := s.estimator.Estimate(req)
		if err != nil {
			return Experience{}, err
		}
		if experience.EstimatedCost == 0 {
			experience.EstimatedCost = result.TotalCost
		}
		if experience.AdjustedTimeMinutes == 0 {
			experience.AdjustedTimeMinutes = result.TotalTimeMinutes
		}
	}

	if err := s.experiences.Insert(ctx, experience); err != nil {
		return Experience{}, translateRepoError(err, ErrExperienceNotFound)
	}
	s.logger(ctx, "experience.logged", map[string]any{
		"experienceId": experience.ID,
		"recipeId":     experience.RecipeID,
		"rated":        experience.Rating > 0,
	})
	return experience, nil
}

// UpdateExperience edits the notes and rating of an existing experience.
func (s *experienceService) UpdateExperience(ctx context.Context, cmd UpdateExperienceCommand) (Experience, error) {
	if cmd.Notes == nil && cmd.Rating == nil {
		return Experience{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if cmd.Rating != nil {
		if err := validateRating(*cmd.Rating); err != nil {
			return Experience{}, err
		}
	}
	experience, err := s.GetExperience(ctx, cmd.UserID, cmd.ExperienceID)
	if err != nil {
		return Experience{}, err
	}
	if cmd.Notes != nil {
		experience.Notes = sanitizeText(*cmd.Notes, maxExperienceNotes)
	}
	if cmd.Rating != nil {
		experience.Rating = *cmd.Rating
	}
	experience.UpdatedAt = s.now()
	if err := s.experiences.Update(ctx, experience); err != nil {
		return Experience{}, translateRepoError(err, ErrExperienceNotFound)
	}
	return experience, nil
}

// GetExperience loads one experience of the user.
func (s *experienceService) GetExperience(ctx context.Context, userID, experienceID string) (Experience, error) {
	userID = strings.TrimSpace(userID)
	experienceID = strings.TrimSpace(experienceID)
	if userID == "" || experienceID == "" {
		return Experience{}, fmt.Errorf("%w: user id and experience id are required", ErrInvalidInput)
	}
	experience, err := s.experiences.FindByID(ctx, userID, experienceID)
	if err != nil {
		return Experience{}, translateRepoError(err, ErrExperienceNotFound)
	}
	return experience, nil
}

// ListExperiences returns the user's history, most recently cooked first.
func (s *experienceService) ListExperiences(ctx context.Context, userID string, pager Pagination) (domain.CursorPage[Experience], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.CursorPage[Experience]{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	page, err := s.experiences.ListByUser(ctx, userID, normalizePager(pager, defaultHistoryPageSize, maxHistoryPageSize))
	if err != nil {
		return domain.CursorPage[Experience]{}, translatePageError(err, ErrExperienceNotFound)
	}
	return page, nil
}

func validateRating(rating int) error {
	if rating < 0 || rating > maxExperienceRating {
		return fmt.Errorf("%w: rating must be between 1 and %d, or 0 for unrated", ErrInvalidInput, maxExperienceRating)
	}
	return nil
}
