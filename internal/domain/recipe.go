package domain

import "time"

// Difficulty grades how demanding a recipe is to prepare.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Ingredient is a single line of a recipe. Quantities are expressed for the recipe's base servings.
type Ingredient struct {
	ID       string
	Name     string
	Quantity float64
	Unit     string
}

// Recipe is a catalogue entry. Servings is the headcount the ingredient quantities were authored for.
type Recipe struct {
	ID          string
	Name        string
	Description string
	Region      string
	Difficulty  Difficulty
	Servings    int
	PrepTime    int
	CookTime    int
	Ingredients []Ingredient
	ImageURL    string
	VideoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TotalTime returns preparation plus cooking minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// UserRecipe is a personal recipe owned by a single user.
type UserRecipe struct {
	ID           string
	OwnerID      string
	Title        string
	Servings     int
	PrepTime     int
	CookTime     int
	Ingredients  []Ingredient
	Instructions string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AsRecipe exposes the personal recipe in catalogue form so it can be estimated.
func (r UserRecipe) AsRecipe() Recipe {
	ingredients := make([]Ingredient, len(r.Ingredients))
	copy(ingredients, r.Ingredients)
	return Recipe{
		ID:          r.ID,
		Name:        r.Title,
		Servings:    r.Servings,
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Ingredients: ingredients,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
