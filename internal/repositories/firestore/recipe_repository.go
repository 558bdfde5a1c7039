package firestore

import (
	"context"
	"errors"

	domain "github.com/homechef/api/internal/domain"
	pfirestore "github.com/homechef/api/internal/platform/firestore"
	"github.com/homechef/api/internal/repositories"
)

const recipeCollection = "recipes"

// RecipeRepository reads the shared catalogue from the "recipes" collection.
type RecipeRepository struct {
	base *pfirestore.BaseRepository[recipeDocument]
}

var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository constructs a Firestore-backed recipe repository.
func NewRecipeRepository(provider *pfirestore.Provider) (*RecipeRepository, error) {
	if provider == nil {
		return nil, errors.New("recipe repository requires firestore provider")
	}
	return &RecipeRepository{
		base: pfirestore.NewBaseRepository[recipeDocument](provider, recipeCollection),
	}, nil
}

// FindByID loads one recipe.
func (r *RecipeRepository) FindByID(ctx context.Context, recipeID string) (domain.Recipe, error) {
	doc, err := r.base.Get(ctx, recipeID)
	if err != nil {
		return domain.Recipe{}, err
	}
	return decodeRecipe(doc.ID, doc.Data), nil
}

// List returns recipes ordered by name, then document ID.
func (r *RecipeRepository) List(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Recipe], error) {
	docs, next, err := r.base.Page(ctx, pfirestore.PageSpec[recipeDocument]{
		OrderBy:     "name",
		PageSize:    pager.PageSize,
		PageToken:   pager.PageToken,
		CursorValue: func(doc recipeDocument) any { return doc.Name },
	})
	if err != nil {
		return domain.CursorPage[domain.Recipe]{}, err
	}
	items := make([]domain.Recipe, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeRecipe(doc.ID, doc.Data))
	}
	return domain.CursorPage[domain.Recipe]{Items: items, NextPageToken: next}, nil
}

// Upsert writes the recipe under its ID.
func (r *RecipeRepository) Upsert(ctx context.Context, recipe domain.Recipe) error {
	_, err := r.base.Set(ctx, recipe.ID, encodeRecipe(recipe))
	return err
}
