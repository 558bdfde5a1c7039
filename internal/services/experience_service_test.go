package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/repositories/memory"
)

func newTestExperienceService(t *testing.T, now time.Time, recorder *eventRecorder) (ExperienceService, *memory.ExperienceStore) {
	t.Helper()
	store := memory.NewExperienceStore()
	seq := 0
	// Variation must be ignored when filling missing figures.
	deps := ExperienceServiceDeps{
		Experiences: store,
		Recipes:     memory.NewRecipeStore(pouletDG(), koki()),
		Estimator:   testEstimator(t, estimator.FixedVariation(0.1)),
		Clock:       fixedClock(now),
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("ID%02d", seq)
		},
	}
	if recorder != nil {
		deps.Logger = recorder.log
	}
	svc, err := NewExperienceService(deps)
	require.NoError(t, err)
	return svc, store
}

func TestExperienceServiceLogFillsEstimate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 2, 19, 0, 0, 0, time.UTC)
	recorder := &eventRecorder{}
	svc, _ := newTestExperienceService(t, now, recorder)

	experience, err := svc.LogExperience(context.Background(), LogExperienceCommand{
		UserID:      "user-1",
		RecipeID:    "poulet-dg",
		People:      8,
		Repetitions: 1,
		Notes:       "<b>Too salty</b>\n\n<script>alert(1)</script>next time   less maggi",
		Rating:      4,
	})
	require.NoError(t, err)

	require.Equal(t, "exp_id01", experience.ID)
	require.Equal(t, "Poulet DG", experience.RecipeName)
	require.Equal(t, 6000.0, experience.EstimatedCost)
	require.Equal(t, 120, experience.AdjustedTimeMinutes)
	require.Equal(t, "Too salty\n\nnext time less maggi", experience.Notes)
	require.Equal(t, now, experience.CookedAt)
	require.Equal(t, now, experience.UpdatedAt)
	require.Equal(t, []string{"experience.logged"}, recorder.names())
	require.Equal(t, true, recorder.events[0].fields["rated"])
}

func TestExperienceServiceKeepsCallerFigures(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 2, 19, 0, 0, 0, time.UTC)
	svc, _ := newTestExperienceService(t, now, nil)
	cookedAt := now.Add(-48 * time.Hour)

	experience, err := svc.LogExperience(context.Background(), LogExperienceCommand{
		UserID:              "user-1",
		RecipeID:            "koki",
		People:              2,
		Repetitions:         1,
		EstimatedCost:       1234,
		AdjustedTimeMinutes: 75,
		CookedAt:            cookedAt,
	})
	require.NoError(t, err)
	require.Equal(t, 1234.0, experience.EstimatedCost)
	require.Equal(t, 75, experience.AdjustedTimeMinutes)
	require.Equal(t, cookedAt, experience.CookedAt)
	require.Zero(t, experience.Rating)
}

func TestExperienceServiceRejectsInvalidLogs(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 2, 19, 0, 0, 0, time.UTC)
	svc, _ := newTestExperienceService(t, now, nil)
	ctx := context.Background()
	valid := LogExperienceCommand{UserID: "user-1", RecipeID: "koki", People: 2, Repetitions: 1}

	cases := map[string]func(cmd *LogExperienceCommand){
		"missing user":   func(cmd *LogExperienceCommand) { cmd.UserID = " " },
		"missing recipe": func(cmd *LogExperienceCommand) { cmd.RecipeID = "" },
		"rating high":    func(cmd *LogExperienceCommand) { cmd.Rating = 6 },
		"rating low":     func(cmd *LogExperienceCommand) { cmd.Rating = -1 },
		"negative cost":  func(cmd *LogExperienceCommand) { cmd.EstimatedCost = -5 },
		"negative time":  func(cmd *LogExperienceCommand) { cmd.AdjustedTimeMinutes = -1 },
		"future":         func(cmd *LogExperienceCommand) { cmd.CookedAt = now.Add(time.Hour) },
	}
	for name, mutate := range cases {
		cmd := valid
		mutate(&cmd)
		_, err := svc.LogExperience(ctx, cmd)
		require.ErrorIs(t, err, ErrInvalidInput, name)
	}

	cmd := valid
	cmd.Repetitions = 11
	_, err := svc.LogExperience(ctx, cmd)
	verr, ok := estimator.IsValidationError(err)
	require.True(t, ok)
	require.Equal(t, estimator.FieldRepetitions, verr.Field)

	cmd = valid
	cmd.RecipeID = "missing"
	_, err = svc.LogExperience(ctx, cmd)
	require.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestExperienceServiceUpdateAndList(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 2, 19, 0, 0, 0, time.UTC)
	svc, _ := newTestExperienceService(t, now, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		experience, err := svc.LogExperience(ctx, LogExperienceCommand{
			UserID:      "user-1",
			RecipeID:    "koki",
			People:      2,
			Repetitions: 1,
			CookedAt:    now.Add(-time.Duration(3-i) * time.Hour),
		})
		require.NoError(t, err)
		ids = append(ids, experience.ID)
	}

	notes := "  Better with <i>pepper</i> "
	rating := 5
	updated, err := svc.UpdateExperience(ctx, UpdateExperienceCommand{UserID: "user-1", ExperienceID: ids[0], Notes: &notes, Rating: &rating})
	require.NoError(t, err)
	require.Equal(t, "Better with pepper", updated.Notes)
	require.Equal(t, 5, updated.Rating)

	fetched, err := svc.GetExperience(ctx, "user-1", ids[0])
	require.NoError(t, err)
	require.Equal(t, updated, fetched)

	_, err = svc.GetExperience(ctx, "user-2", ids[0])
	require.ErrorIs(t, err, ErrExperienceNotFound)

	_, err = svc.UpdateExperience(ctx, UpdateExperienceCommand{UserID: "user-1", ExperienceID: ids[0]})
	require.ErrorIs(t, err, ErrInvalidInput)

	page, err := svc.ListExperiences(ctx, "user-1", Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, []string{ids[2], ids[1]}, []string{page.Items[0].ID, page.Items[1].ID})
	require.NotEmpty(t, page.NextPageToken)

	page, err = svc.ListExperiences(ctx, "user-1", Pagination{PageSize: 2, PageToken: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, ids[0], page.Items[0].ID)
	require.Empty(t, page.NextPageToken)

	_, err = svc.ListExperiences(ctx, "user-1", Pagination{PageToken: "%%%"})
	require.ErrorIs(t, err, ErrInvalidInput)

	empty, err := svc.ListExperiences(ctx, "user-3", Pagination{})
	require.NoError(t, err)
	require.Equal(t, domain.CursorPage[Experience]{Items: []Experience{}}, empty)
}
