package firestore

import (
	"time"

	domain "github.com/homechef/api/internal/domain"
)

type ingredientDocument struct {
	ID       string  `firestore:"id"`
	Name     string  `firestore:"name"`
	Quantity float64 `firestore:"quantity"`
	Unit     string  `firestore:"unit"`
}

type recipeDocument struct {
	Name        string               `firestore:"name"`
	Description string               `firestore:"description,omitempty"`
	Region      string               `firestore:"region,omitempty"`
	Difficulty  string               `firestore:"difficulty,omitempty"`
	Servings    int                  `firestore:"servings"`
	PrepTime    int                  `firestore:"prepTime"`
	CookTime    int                  `firestore:"cookTime"`
	Ingredients []ingredientDocument `firestore:"ingredients"`
	ImageURL    string               `firestore:"imageUrl,omitempty"`
	VideoURL    string               `firestore:"videoUrl,omitempty"`
	CreatedAt   time.Time            `firestore:"createdAt,omitempty"`
	UpdatedAt   time.Time            `firestore:"updatedAt,omitempty"`
}

type experienceDocument struct {
	RecipeID            string    `firestore:"recipeId"`
	RecipeName          string    `firestore:"recipeName"`
	People              int       `firestore:"people"`
	Repetitions         int       `firestore:"repetitions"`
	EstimatedCost       float64   `firestore:"estimatedCost"`
	AdjustedTimeMinutes int       `firestore:"adjustedTime"`
	Notes               string    `firestore:"notes,omitempty"`
	Rating              int       `firestore:"rating,omitempty"`
	CookedAt            time.Time `firestore:"cookedAt"`
	UpdatedAt           time.Time `firestore:"updatedAt"`
}

type userRecipeDocument struct {
	Title        string               `firestore:"title"`
	Servings     int                  `firestore:"servings"`
	PrepTime     int                  `firestore:"prepTime"`
	CookTime     int                  `firestore:"cookTime"`
	Ingredients  []ingredientDocument `firestore:"ingredients"`
	Instructions string               `firestore:"instructions,omitempty"`
	CreatedAt    time.Time            `firestore:"createdAt"`
	UpdatedAt    time.Time            `firestore:"updatedAt"`
}

func encodeIngredients(items []domain.Ingredient) []ingredientDocument {
	docs := make([]ingredientDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, ingredientDocument(item))
	}
	return docs
}

func decodeIngredients(docs []ingredientDocument) []domain.Ingredient {
	items := make([]domain.Ingredient, 0, len(docs))
	for _, doc := range docs {
		items = append(items, domain.Ingredient(doc))
	}
	return items
}

func encodeRecipe(recipe domain.Recipe) recipeDocument {
	return recipeDocument{
		Name:        recipe.Name,
		Description: recipe.Description,
		Region:      recipe.Region,
		Difficulty:  string(recipe.Difficulty),
		Servings:    recipe.Servings,
		PrepTime:    recipe.PrepTime,
		CookTime:    recipe.CookTime,
		Ingredients: encodeIngredients(recipe.Ingredients),
		ImageURL:    recipe.ImageURL,
		VideoURL:    recipe.VideoURL,
		CreatedAt:   recipe.CreatedAt.UTC(),
		UpdatedAt:   recipe.UpdatedAt.UTC(),
	}
}

func decodeRecipe(id string, doc recipeDocument) domain.Recipe {
	return domain.Recipe{
		ID:          id,
		Name:        doc.Name,
		Description: doc.Description,
		Region:      doc.Region,
		Difficulty:  domain.Difficulty(doc.Difficulty),
		Servings:    doc.Servings,
		PrepTime:    doc.PrepTime,
		CookTime:    doc.CookTime,
		Ingredients: decodeIngredients(doc.Ingredients),
		ImageURL:    doc.ImageURL,
		VideoURL:    doc.VideoURL,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func encodeExperience(exp domain.Experience) experienceDocument {
	return experienceDocument{
		RecipeID:            exp.RecipeID,
		RecipeName:          exp.RecipeName,
		People:              exp.People,
		Repetitions:         exp.Repetitions,
		EstimatedCost:       exp.EstimatedCost,
		AdjustedTimeMinutes: exp.AdjustedTimeMinutes,
		Notes:               exp.Notes,
		Rating:              exp.Rating,
		CookedAt:            exp.CookedAt.UTC(),
		UpdatedAt:           exp.UpdatedAt.UTC(),
	}
}

func decodeExperience(userID, id string, doc experienceDocument) domain.Experience {
	return domain.Experience{
		ID:                  id,
		UserID:              userID,
		RecipeID:            doc.RecipeID,
		RecipeName:          doc.RecipeName,
		People:              doc.People,
		Repetitions:         doc.Repetitions,
		EstimatedCost:       doc.EstimatedCost,
		AdjustedTimeMinutes: doc.AdjustedTimeMinutes,
		Notes:               doc.Notes,
		Rating:              doc.Rating,
		CookedAt:            doc.CookedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}

func encodeUserRecipe(recipe domain.UserRecipe) userRecipeDocument {
	return userRecipeDocument{
		Title:        recipe.Title,
		Servings:     recipe.Servings,
		PrepTime:     recipe.PrepTime,
		CookTime:     recipe.CookTime,
		Ingredients:  encodeIngredients(recipe.Ingredients),
		Instructions: recipe.Instructions,
		CreatedAt:    recipe.CreatedAt.UTC(),
		UpdatedAt:    recipe.UpdatedAt.UTC(),
	}
}

func decodeUserRecipe(ownerID, id string, doc userRecipeDocument) domain.UserRecipe {
	return domain.UserRecipe{
		ID:           id,
		OwnerID:      ownerID,
		Title:        doc.Title,
		Servings:     doc.Servings,
		PrepTime:     doc.PrepTime,
		CookTime:     doc.CookTime,
		Ingredients:  decodeIngredients(doc.Ingredients),
		Instructions: doc.Instructions,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
