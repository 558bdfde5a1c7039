package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	domain "github.com/homechef/api/internal/domain"
	pfirestore "github.com/homechef/api/internal/platform/firestore"
	"github.com/homechef/api/internal/repositories"
)

const userRecipeCollectionPattern = "users/%s/recipes"

// UserRecipeRepository stores personal recipes under users/{uid}/recipes.
type UserRecipeRepository struct {
	base *pfirestore.BaseRepository[userRecipeDocument]
}

var _ repositories.UserRecipeRepository = (*UserRecipeRepository)(nil)

// NewUserRecipeRepository constructs a Firestore-backed personal recipe repository.
func NewUserRecipeRepository(provider *pfirestore.Provider) (*UserRecipeRepository, error) {
	if provider == nil {
		return nil, errors.New("user recipe repository requires firestore provider")
	}
	return &UserRecipeRepository{
		base: pfirestore.NewBaseRepository[userRecipeDocument](provider, ""),
	}, nil
}

func (r *UserRecipeRepository) Insert(ctx context.Context, recipe domain.UserRecipe) error {
	coll, err := scopedToUser(r.base, userRecipeCollectionPattern, recipe.OwnerID)
	if err != nil {
		return err
	}
	_, err = coll.Create(ctx, recipe.ID, encodeUserRecipe(recipe))
	return err
}

func (r *UserRecipeRepository) Update(ctx context.Context, recipe domain.UserRecipe) error {
	coll, err := scopedToUser(r.base, userRecipeCollectionPattern, recipe.OwnerID)
	if err != nil {
		return err
	}
	return coll.Replace(ctx, recipe.ID, encodeUserRecipe(recipe))
}

func (r *UserRecipeRepository) Delete(ctx context.Context, ownerID, recipeID string) error {
	coll, err := scopedToUser(r.base, userRecipeCollectionPattern, ownerID)
	if err != nil {
		return err
	}
	return coll.Delete(ctx, recipeID)
}

func (r *UserRecipeRepository) FindByID(ctx context.Context, ownerID, recipeID string) (domain.UserRecipe, error) {
	coll, err := scopedToUser(r.base, userRecipeCollectionPattern, ownerID)
	if err != nil {
		return domain.UserRecipe{}, err
	}
	doc, err := coll.Get(ctx, recipeID)
	if err != nil {
		return domain.UserRecipe{}, err
	}
	return decodeUserRecipe(ownerID, doc.ID, doc.Data), nil
}

// ListByOwner returns personal recipes, most recently updated first.
func (r *UserRecipeRepository) ListByOwner(ctx context.Context, ownerID string, pager domain.Pagination) (domain.CursorPage[domain.UserRecipe], error) {
	coll, err := scopedToUser(r.base, userRecipeCollectionPattern, ownerID)
	if err != nil {
		return domain.CursorPage[domain.UserRecipe]{}, err
	}
	docs, next, err := coll.Page(ctx, pfirestore.PageSpec[userRecipeDocument]{
		OrderBy:     "updatedAt",
		Direction:   firestore.Desc,
		PageSize:    pager.PageSize,
		PageToken:   pager.PageToken,
		CursorValue: func(doc userRecipeDocument) any { return doc.UpdatedAt },
	})
	if err != nil {
		return domain.CursorPage[domain.UserRecipe]{}, err
	}
	items := make([]domain.UserRecipe, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeUserRecipe(ownerID, doc.ID, doc.Data))
	}
	return domain.CursorPage[domain.UserRecipe]{Items: items, NextPageToken: next}, nil
}
