package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/repositories"
)

func catalogue() []domain.Recipe {
	names := map[string]string{"koki": "Koki", "achu": "Achu", "eru": "Eru", "ndole": "Ndolé", "kondre": "Kondrè"}
	recipes := make([]domain.Recipe, 0, len(names))
	for id, name := range names {
		recipes = append(recipes, domain.Recipe{ID: id, Name: name, Servings: 4, Ingredients: []domain.Ingredient{{Name: "salt", Quantity: 1, Unit: "tsp"}}})
	}
	return recipes
}

func TestRecipeStorePagesByName(t *testing.T) {
	t.Parallel()

	store := NewRecipeStore(catalogue()...)
	ctx := context.Background()

	var (
		names []string
		token string
	)
	for {
		page, err := store.List(ctx, domain.Pagination{PageSize: 2, PageToken: token})
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Items), 2)
		for _, recipe := range page.Items {
			names = append(names, recipe.Name)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	require.Equal(t, []string{"Achu", "Eru", "Koki", "Kondrè", "Ndolé"}, names)
}

func TestRecipeStoreFindAndUpsert(t *testing.T) {
	t.Parallel()

	store := NewRecipeStore(catalogue()...)
	ctx := context.Background()

	recipe, err := store.FindByID(ctx, "eru")
	require.NoError(t, err)
	recipe.Ingredients[0].Quantity = 99

	again, err := store.FindByID(ctx, "eru")
	require.NoError(t, err)
	require.Equal(t, 1.0, again.Ingredients[0].Quantity, "callers must not mutate stored recipes")

	_, err = store.FindByID(ctx, "missing")
	require.True(t, repositories.IsNotFound(err))

	require.NoError(t, store.Upsert(ctx, domain.Recipe{ID: "sanga", Name: "Sanga"}))
	require.Equal(t, 6, store.Len())
	require.Error(t, store.Upsert(ctx, domain.Recipe{Name: "anonymous"}))
}

func TestRecipeStoreRejectsBadToken(t *testing.T) {
	t.Parallel()

	_, err := NewRecipeStore().List(context.Background(), domain.Pagination{PageSize: 2, PageToken: "%%%"})
	var storeErr *repositories.StoreError
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, repositories.ErrorKindInvalid, storeErr.Kind)
}

func TestExperienceStoreNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewExperienceStore()
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, store.Insert(ctx, domain.Experience{ID: id, UserID: "alice", RecipeID: "ndole", CookedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	require.NoError(t, store.Insert(ctx, domain.Experience{ID: "b1", UserID: "bob", CookedAt: base}))

	err := store.Insert(ctx, domain.Experience{ID: "e1", UserID: "alice"})
	require.True(t, repositories.IsConflict(err))

	first, err := store.ListByUser(ctx, "alice", domain.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"e3", "e2"}, experienceIDs(first.Items))
	require.NotEmpty(t, first.NextPageToken)

	second, err := store.ListByUser(ctx, "alice", domain.Pagination{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Equal(t, []string{"e1"}, experienceIDs(second.Items))
	require.Empty(t, second.NextPageToken)

	_, err = store.FindByID(ctx, "bob", "e1")
	require.True(t, repositories.IsNotFound(err), "experiences are scoped to their user")

	updated := domain.Experience{ID: "e2", UserID: "alice", Rating: 4, CookedAt: base.Add(time.Hour)}
	require.NoError(t, store.Update(ctx, updated))
	got, err := store.FindByID(ctx, "alice", "e2")
	require.NoError(t, err)
	require.Equal(t, 4, got.Rating)

	require.True(t, repositories.IsNotFound(store.Update(ctx, domain.Experience{ID: "nope", UserID: "alice"})))
}

func TestUserRecipeStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewUserRecipeStore()
	ctx := context.Background()
	at := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, domain.UserRecipe{ID: "r1", OwnerID: "alice", Title: "Mbongo", UpdatedAt: at}))
	require.NoError(t, store.Insert(ctx, domain.UserRecipe{ID: "r2", OwnerID: "alice", Title: "Okok", UpdatedAt: at.Add(time.Minute)}))
	require.True(t, repositories.IsConflict(store.Insert(ctx, domain.UserRecipe{ID: "r1", OwnerID: "alice"})))

	page, err := store.ListByOwner(ctx, "alice", domain.Pagination{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "r2", page.Items[0].ID)

	require.NoError(t, store.Update(ctx, domain.UserRecipe{ID: "r1", OwnerID: "alice", Title: "Mbongo tchobi", UpdatedAt: at.Add(time.Hour)}))
	page, err = store.ListByOwner(ctx, "alice", domain.Pagination{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, "r1", page.Items[0].ID)

	_, err = store.FindByID(ctx, "bob", "r1")
	require.True(t, repositories.IsNotFound(err))

	require.NoError(t, store.Delete(ctx, "alice", "r1"))
	require.True(t, repositories.IsNotFound(store.Delete(ctx, "alice", "r1")))
}

func TestStoresHonourCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRecipeStore(catalogue()...).FindByID(ctx, "eru")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, NewExperienceStore().Insert(ctx, domain.Experience{ID: "x"}), context.Canceled)
	_, err = NewUserRecipeStore().ListByOwner(ctx, "alice", domain.Pagination{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(nil, nil)
	require.Error(t, err)

	registry, err := NewRegistry(NewRecipeStore(catalogue()...), nil)
	require.NoError(t, err)
	require.NotNil(t, registry.Recipes())
	require.NotNil(t, registry.Experiences())
	require.NotNil(t, registry.UserRecipes())
	require.Nil(t, registry.Health())
	require.NoError(t, registry.Close(context.Background()))
}

func experienceIDs(items []domain.Experience) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
