package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/repositories/memory"
)

func TestRecipeServicePagesCatalogue(t *testing.T) {
	t.Parallel()

	recipes := make([]domain.Recipe, 0, 60)
	for i := 0; i < 60; i++ {
		recipe := koki()
		recipe.ID = fmt.Sprintf("koki-%02d", i)
		recipe.Name = fmt.Sprintf("Koki %02d", i)
		recipes = append(recipes, recipe)
	}
	svc, err := NewRecipeService(RecipeServiceDeps{Recipes: memory.NewRecipeStore(recipes...)})
	require.NoError(t, err)
	ctx := context.Background()

	page, err := svc.ListRecipes(ctx, Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Items, defaultRecipePageSize)
	require.Equal(t, "Koki 00", page.Items[0].Name)

	page, err = svc.ListRecipes(ctx, Pagination{PageSize: 500, PageToken: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Items, maxRecipePageSize-2)
	require.Equal(t, "Koki 12", page.Items[0].Name)
	require.Empty(t, page.NextPageToken)

	_, err = svc.ListRecipes(ctx, Pagination{PageToken: "not-a-token"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecipeServiceGetRecipe(t *testing.T) {
	t.Parallel()

	svc, err := NewRecipeService(RecipeServiceDeps{Recipes: memory.NewRecipeStore(koki())})
	require.NoError(t, err)
	ctx := context.Background()

	recipe, err := svc.GetRecipe(ctx, " koki ")
	require.NoError(t, err)
	require.Equal(t, "Koki", recipe.Name)

	_, err = svc.GetRecipe(ctx, "ndole")
	require.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = svc.GetRecipe(ctx, "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewRecipeService(RecipeServiceDeps{})
	require.Error(t, err)
}

func TestRecipeServiceMapsUnavailableStore(t *testing.T) {
	t.Parallel()

	svc, err := NewRecipeService(RecipeServiceDeps{Recipes: failingRecipes{}})
	require.NoError(t, err)
	_, err = svc.ListRecipes(context.Background(), Pagination{})
	require.ErrorIs(t, err, ErrUnavailable)
}
